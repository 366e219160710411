package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/rvustats/internal/model"
)

// RecordsSheet is the worksheet WriteXLSX fills.
const RecordsSheet = "Records"

// WriteXLSX writes records as a single-sheet workbook with the same columns
// as WriteCSV. Numeric fields are stored as numbers.
func WriteXLSX(w io.Writer, records []model.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheet); err != nil {
		return fmt.Errorf("name worksheet: %w", err)
	}

	header := model.FieldNames()
	hrow := make([]any, len(header))
	for i, h := range header {
		hrow[i] = h
	}
	if err := f.SetSheetRow(RecordsSheet, "A1", &hrow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := xlsxRow(&records[i])
		if err := f.SetSheetRow(RecordsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	_ = f.SetColWidth(RecordsSheet, "A", "C", 22) // timestamps
	_ = f.SetColWidth(RecordsSheet, "F", "F", 24) // provider

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// xlsxRow is recordCells with numeric columns left as float64 so the
// workbook keeps them as numbers. Blank cells stay strings.
func xlsxRow(r *model.Record) []any {
	cells := recordCells(r)
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	for i, f := range model.AllFields {
		if !f.Numeric || cells[i] == "" {
			continue
		}
		switch f.Name {
		case model.FieldRVU:
			row[i] = r.RVU
		case model.FieldPoints:
			row[i] = r.Points
		case model.FieldProcedures:
			row[i] = r.Procedures
		case model.FieldHalfDays:
			row[i] = r.HalfDays
		case model.FieldTATMinutes:
			row[i] = r.TAT.Minutes
		case model.FieldPointsPerHalfDay:
			row[i] = r.PointsPerHalfDay.Value
		case model.FieldProceduresPerHalfDay:
			row[i] = r.ProceduresPerHalfDay.Value
		}
	}
	return row
}
