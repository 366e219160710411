package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
)

const parquetBatchSize = 1024

// WriteParquet writes records as a model.ExamRow snapshot that
// source.Open reads back.
func WriteParquet(w io.Writer, records []model.Record) error {
	pw := parquet.NewGenericWriter[model.ExamRow](w)

	batch := make([]model.ExamRow, 0, parquetBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := pw.Write(batch); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for i := range records {
		batch = append(batch, ExamRow(&records[i]))
		if len(batch) == parquetBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// ExamRow converts a mapped record to its parquet snapshot row.
func ExamRow(r *model.Record) model.ExamRow {
	row := model.ExamRow{
		Date:        optString(normalize.FormatTime(r.Date)),
		CreatedAt:   optString(normalize.FormatTime(r.CreatedAt)),
		FinalizedAt: optString(normalize.FormatTime(r.FinalizedAt)),
		RawDuration: optString(r.RawDuration),
		Provider:    r.Provider,
		Modality:    optString(r.Modality),
		Section:     optString(r.Section),
		Shift:       optString(r.Shift),
		RVU:         r.RVU,
		Points:      r.Points,
		Procedures:  r.Procedures,
		HalfDays:    r.HalfDays,
	}
	if r.TAT.Known {
		v := r.TAT.Minutes
		row.TATMinutes = &v
	}
	if r.PointsPerHalfDay.Known {
		v := r.PointsPerHalfDay.Value
		row.PointsPerHalfDay = &v
	}
	if r.ProceduresPerHalfDay.Known {
		v := r.ProceduresPerHalfDay.Value
		row.ProceduresPerHalfDay = &v
	}
	return row
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
