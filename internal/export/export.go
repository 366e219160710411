// Package export writes filtered records and group summaries back out as
// flat CSV, XLSX, or parquet.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/rvustats/internal/aggregate"
	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
)

// ErrUnsupportedFormat is returned by WriteFile for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// WriteFile writes records to path, choosing the format by extension
// (.csv, .xlsx, .parquet).
func WriteFile(path string, records []model.Record, log zerolog.Logger) error {
	start := time.Now()

	var write func(io.Writer, []model.Record) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		write = WriteCSV
	case ".xlsx":
		write = WriteXLSX
	case ".parquet":
		write = WriteParquet
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("rows", len(records)).
		Dur("duration", time.Since(start)).
		Msg("export complete")
	return nil
}

// WriteCSV writes a header of canonical field names and one row per record.
// Unknown durations and measures are empty cells.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.FieldNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range records {
		if err := cw.Write(recordCells(&records[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// recordCells flattens r in model.FieldNames order.
func recordCells(r *model.Record) []string {
	return []string{
		normalize.FormatTime(r.Date),
		normalize.FormatTime(r.CreatedAt),
		normalize.FormatTime(r.FinalizedAt),
		r.RawDuration,
		durationCell(r.TAT),
		r.Provider,
		r.Modality,
		r.Section,
		r.Shift,
		normalize.FormatNumber(r.RVU),
		normalize.FormatNumber(r.Points),
		normalize.FormatNumber(r.Procedures),
		normalize.FormatNumber(r.HalfDays),
		measureCell(r.PointsPerHalfDay),
		measureCell(r.ProceduresPerHalfDay),
	}
}

func durationCell(d model.Duration) string {
	if !d.Known {
		return ""
	}
	return normalize.FormatNumber(d.Minutes)
}

func measureCell(m model.Measure) string {
	if !m.Known {
		return ""
	}
	return normalize.FormatNumber(m.Value)
}

// WriteGroupsCSV writes one row per group. keyHeader names the first column,
// e.g. "provider" or "month".
func WriteGroupsCSV(w io.Writer, keyHeader string, groups []aggregate.Group) error {
	cw := csv.NewWriter(w)
	header := []string{
		keyHeader, "count", "known_tat", "mean_tat_minutes",
		"rvu", "points", "procedures", "half_days",
		"rvu_per_minute", "points_per_half_day", "procedures_per_half_day",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, g := range groups {
		row := []string{
			g.Key,
			fmt.Sprint(g.Count),
			fmt.Sprint(g.KnownTAT),
			durationCell(g.MeanTAT),
			normalize.FormatNumber(g.RVU),
			normalize.FormatNumber(g.Points),
			normalize.FormatNumber(g.Procedures),
			normalize.FormatNumber(g.HalfDays),
			measureCell(g.RVUPerMinute),
			measureCell(g.MeanPointsPerHalfDay),
			measureCell(g.MeanProceduresPerHalfDay),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write group %q: %w", g.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
