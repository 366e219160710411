package source

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
)

const parquetBatchSize = 1024

// ParquetReader wraps a parquet GenericReader for streaming ExamRow records.
type ParquetReader struct {
	file   *os.File
	reader *parquet.GenericReader[model.ExamRow]
}

// OpenParquet opens a parquet snapshot and returns a streaming reader.
func OpenParquet(path string) (*ParquetReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[model.ExamRow](pf)
	return &ParquetReader{file: f, reader: r}, nil
}

// NumRows returns the total number of rows in the file.
func (r *ParquetReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records into the provided slice.
// Returns the number of rows read and io.EOF when done.
func (r *ParquetReader) Read(rows []model.ExamRow) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet rows: %w", err)
	}
	return n, err
}

// Close releases all resources.
func (r *ParquetReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

func readParquet(path string) (*Table, error) {
	r, err := OpenParquet(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	t := &Table{Headers: model.FieldNames(), Rows: make([][]string, 0, r.NumRows())}
	buf := make([]model.ExamRow, parquetBatchSize)
	for {
		n, readErr := r.Read(buf)
		for i := 0; i < n; i++ {
			t.Rows = append(t.Rows, examRowCells(&buf[i]))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}
	return t, nil
}

// examRowCells flattens an ExamRow in model.FieldNames order.
func examRowCells(r *model.ExamRow) []string {
	return []string{
		deref(r.Date),
		deref(r.CreatedAt),
		deref(r.FinalizedAt),
		deref(r.RawDuration),
		derefNum(r.TATMinutes),
		r.Provider,
		deref(r.Modality),
		deref(r.Section),
		deref(r.Shift),
		normalize.FormatNumber(r.RVU),
		normalize.FormatNumber(r.Points),
		normalize.FormatNumber(r.Procedures),
		normalize.FormatNumber(r.HalfDays),
		derefNum(r.PointsPerHalfDay),
		derefNum(r.ProceduresPerHalfDay),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefNum(v *float64) string {
	if v == nil {
		return ""
	}
	return normalize.FormatNumber(*v)
}
