package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/rvustats/internal/aggregate"
	"github.com/gyeh/rvustats/internal/db"
	"github.com/gyeh/rvustats/internal/exitcode"
	"github.com/gyeh/rvustats/internal/export"
	"github.com/gyeh/rvustats/internal/filter"
	"github.com/gyeh/rvustats/internal/ingest"
	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
	"github.com/gyeh/rvustats/internal/report"
	"github.com/gyeh/rvustats/internal/schema"
	"github.com/gyeh/rvustats/internal/source"
)

// addSourceFlags registers the flags that select and map a source.
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to a .csv, .tsv, .xlsx, .xls, .parquet, or .sqlite file")
	f.StringVar(&cfg.Sheet, "sheet", "", "Worksheet name (spreadsheets; default first sheet)")
	f.StringVar(&cfg.Query, "query", "", "Query for SQLite sources (default \""+source.DefaultQuery+"\")")
	f.StringVar(&cfg.Profile, "profile", "", "Required columns: tat, productivity, or rvu (default tat)")
	f.BoolVar(&cfg.DeriveTAT, "derive-tat", false, "Fill unknown turnaround from finalized minus created time")
}

// addRecordFlags is addSourceFlags plus reading back a Postgres load.
func addRecordFlags(cmd *cobra.Command) {
	addSourceFlags(cmd)
	f := cmd.Flags()
	f.BoolVar(&cfg.FromDB, "from-db", false, "Read records from Postgres instead of --file")
	f.StringVar(&cfg.BatchID, "batch", "", "Ingest batch to read with --from-db (default latest)")
	f.StringVar(&cfg.MeanPolicy, "policy", "", "Unknown turnaround in means: zero or exclude (default zero)")
}

// selectionFlags are the record filters shared by summary, trends, and export.
type selectionFlags struct {
	from, to   string
	latest     bool
	days       int
	providers  []string
	modalities []string
	sections   []string
	shifts     []string
	knownOnly  bool
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.from, "from", "", "First day to include (inclusive)")
	f.StringVar(&s.to, "to", "", "Last day to include (inclusive)")
	f.BoolVar(&s.latest, "latest", false, "Only the most recent day in the data")
	f.IntVar(&s.days, "days", 0, fmt.Sprintf("Trailing window in days ending at the most recent day (e.g. %d)", filter.DefaultWindowDays))
	f.StringSliceVar(&s.providers, "provider", nil, "Provider name (repeatable)")
	f.StringSliceVar(&s.modalities, "modality", nil, "Modality (repeatable)")
	f.StringSliceVar(&s.sections, "section", nil, "Section (repeatable)")
	f.StringSliceVar(&s.shifts, "shift", nil, "Shift label (repeatable)")
	f.BoolVar(&s.knownOnly, "known-only", false, "Drop records with unknown turnaround")
}

func (s *selectionFlags) selection() (report.Selection, error) {
	sel := report.Selection{
		Latest:     s.latest,
		Days:       s.days,
		Providers:  s.providers,
		Modalities: s.modalities,
		Sections:   s.sections,
		Shifts:     s.shifts,
		KnownOnly:  s.knownOnly,
	}
	var err error
	if sel.From, err = parseDay("--from", s.from); err != nil {
		return sel, err
	}
	if sel.To, err = parseDay("--to", s.to); err != nil {
		return sel, err
	}
	if s.latest && s.days > 0 {
		return sel, errors.New("--latest and --days are mutually exclusive")
	}
	return sel, nil
}

func parseDay(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	d := normalize.ParseDate(v)
	if d == nil {
		return time.Time{}, fmt.Errorf("%s: cannot parse date %q", flag, v)
	}
	return *d, nil
}

// loadRecords reads the configured source, from a file or from Postgres.
func loadRecords(ctx context.Context, log zerolog.Logger) ([]model.Record, error) {
	if cfg.FromDB {
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		defer pool.Close()

		records, err := db.LoadRecords(ctx, pool, cfg.BatchID)
		if err != nil {
			return nil, err
		}
		log.Info().Int("records", len(records)).Str("batch", cfg.BatchID).Msg("records loaded from database")
		return records, nil
	}

	cache := source.NewCache(log)
	ref := source.Ref{Path: cfg.FilePath, Sheet: cfg.Sheet, Query: cfg.Query}
	records, _, err := report.Load(ctx, cache, ref, cfg.SchemaOptions(), log)
	return records, err
}

func meanPolicy() aggregate.MeanPolicy {
	p, _ := aggregate.ParsePolicy(cfg.MeanPolicy) // validated by config.ApplyDefaults
	return p
}

// exitCode maps an error to the process exit status.
// errBadFlag marks a flag value that failed validation.
var errBadFlag = errors.New("invalid flag")

func exitCode(err error) int {
	var (
		schemaErr *schema.SchemaError
		sourceErr *source.SourceError
		pipeErr   *ingest.PipelineError
	)
	switch {
	case errors.As(err, &schemaErr):
		return exitcode.SchemaError
	case errors.As(err, &sourceErr):
		return exitcode.SourceError
	case errors.Is(err, report.ErrNoData), errors.Is(err, db.ErrNoBatch):
		return exitcode.NoData
	case errors.Is(err, filter.ErrInvalidRange), errors.Is(err, errBadFlag),
		errors.Is(err, export.ErrUnsupportedFormat):
		return exitcode.UsageError
	case errors.As(err, &pipeErr):
		if pipeErr.Phase == "stage" {
			return exitcode.CopyError
		}
		return exitcode.DBConnError
	default:
		return exitcode.InternalError
	}
}

// configExitCode maps a config validation error: an unreachable input file
// is a source error, anything else is a usage error.
func configExitCode(err error) int {
	var sourceErr *source.SourceError
	if errors.As(err, &sourceErr) {
		return exitcode.SourceError
	}
	return exitcode.UsageError
}

func failConfig(log zerolog.Logger, err error) {
	log.Error().Err(err).Msg("config validation failed")
	os.Exit(configExitCode(err))
}

// fail logs err and exits with its mapped code.
func fail(log zerolog.Logger, err error, msg string) {
	ev := log.Error().Err(err)
	var pe *ingest.PipelineError
	if errors.As(err, &pe) {
		ev = ev.Str("phase", pe.Phase)
	}
	ev.Msg(msg)
	os.Exit(exitCode(err))
}
