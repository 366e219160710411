package source

import (
	"fmt"
	"slices"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows bounds legacy workbooks, which carry no reliable row count.
const maxXLSRows = 1 << 20

func readXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("worksheet %q not found; have %v", sheet, sheets)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty", sheet)
	}
	if err := rawDates(f, sheet, rows); err != nil {
		return nil, err
	}
	return splitHeader(rows)
}

// rawDates replaces the display text of date-styled cells with their serial
// value. Short date formats such as m/d/yy lose the century on display.
// Time-only and duration formats keep their display text.
func rawDates(f *excelize.File, sheet string, rows [][]string) error {
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	dateStyle := map[int]bool{}
	for r := range rows {
		if r >= len(raw) {
			break
		}
		for c := range rows[r] {
			if c >= len(raw[r]) || rows[r][c] == raw[r][c] {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			idx, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return fmt.Errorf("style of %s: %w", cell, err)
			}
			isDate, seen := dateStyle[idx]
			if !seen {
				// Workbooks without a cell format table keep display text.
				if st, err := f.GetStyle(idx); err == nil {
					isDate = isDateFormat(st.NumFmt, st.CustomNumFmt)
				}
				dateStyle[idx] = isDate
			}
			if isDate {
				rows[r][c] = raw[r][c]
			}
		}
	}
	return nil
}

// isDateFormat reports whether a number format renders a calendar date.
// Built-in ids follow ECMA-376 18.8.30 plus the CJK locale date ids.
func isDateFormat(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		return customHasDate(*custom)
	}
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

// customHasDate looks for a year or day token outside quoted literals and
// bracketed sections such as [h] or [$-409].
func customHasDate(format string) bool {
	var quoted bool
	depth := 0
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			depth++
		case r == ']':
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case r == 'y', r == 'd':
			return true
		}
	}
	return false
}

func readXLS(path, sheet string) (*Table, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}

	var ws *xls.WorkSheet
	var names []string
	for i := 0; i < wb.NumSheets(); i++ {
		s := wb.GetSheet(i)
		if s == nil {
			continue
		}
		names = append(names, s.Name)
		if ws == nil && (sheet == "" || s.Name == sheet) {
			ws = s
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("worksheet %q not found; have %v", sheet, names)
	}

	var rows [][]string
	for i := 0; i <= int(ws.MaxRow) && i < maxXLSRows; i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty", ws.Name)
	}
	return splitHeader(rows)
}

// Sheets lists the worksheet names of an xlsx workbook.
func Sheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}
