// Package source reads exam tables from delimited text, spreadsheets,
// parquet snapshots, and SQLite stores. Every format comes back as the same
// string-typed Table; typing happens in the schema package.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is an already-parsed sequence of rows with string-typed raw fields.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
	SHA256  string // content digest; set when read through a Cache
}

// Cell returns row[idx] trimmed, or "" when idx is out of range.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Ref identifies one source.
type Ref struct {
	Path  string
	Sheet string // spreadsheets only; first sheet when empty
	Query string // SQLite only; DefaultQuery when empty
}

func (r Ref) String() string {
	s := r.Path
	if r.Sheet != "" {
		s += "#" + r.Sheet
	}
	return s
}

// DefaultQuery is run against SQLite stores when Ref.Query is empty.
const DefaultQuery = "SELECT * FROM exams"

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// SourceError reports a source that is missing or unreadable. It is never
// retried here.
type SourceError struct {
	Ref Ref
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s", e.Ref, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Open reads the whole source into a Table, choosing the reader by extension.
func Open(ctx context.Context, ref Ref) (*Table, error) {
	if _, err := os.Stat(ref.Path); err != nil {
		return nil, &SourceError{Ref: ref, Err: err}
	}

	var (
		t   *Table
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(ref.Path)); ext {
	case ".csv", ".tsv", ".txt":
		t, err = readDelimited(ref.Path, ext == ".tsv")
	case ".xlsx", ".xlsm":
		t, err = readXLSX(ref.Path, ref.Sheet)
	case ".xls":
		t, err = readXLS(ref.Path, ref.Sheet)
	case ".parquet":
		t, err = readParquet(ref.Path)
	case ".db", ".sqlite", ".sqlite3":
		t, err = readSQLite(ctx, ref.Path, ref.Query)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, &SourceError{Ref: ref, Err: err}
	}
	t.Name = ref.String()
	return t, nil
}

// normalizeHeaders trims headers and drops a leading UTF-8 BOM.
func normalizeHeaders(h []string) []string {
	out := make([]string, len(h))
	for i, v := range h {
		if i == 0 {
			v = strings.TrimPrefix(v, "\ufeff")
		}
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// splitHeader returns the first non-blank row as headers and the rest as data.
func splitHeader(rows [][]string) (*Table, error) {
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		return &Table{Headers: normalizeHeaders(row), Rows: dropBlank(rows[i+1:])}, nil
	}
	return nil, fmt.Errorf("no header row")
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func dropBlank(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if !blankRow(r) {
			out = append(out, r)
		}
	}
	return out
}
