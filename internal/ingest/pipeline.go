package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/rvustats/internal/config"
	"github.com/gyeh/rvustats/internal/model"
)

// Source file statuses recorded in ingest.source_files.
const (
	StatusPending = "pending"
	StatusStaging = "staging"
	StatusLoaded  = "loaded"
	StatusFailed  = "failed"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full ingest pipeline: preflight → stage → finalize.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*model.IngestSummary, error) {
	totalStart := time.Now()

	// Phase 1: Preflight
	log.Info().Str("file", cfg.FilePath).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, cfg)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Int64("source_file_id", pf.SourceFileID).
			Str("sha256", pf.FileSHA256).
			Msg("file already loaded, skipping (use --force to re-load)")
		return &model.IngestSummary{
			FilePath:      pf.FilePath,
			FileSHA256:    pf.FileSHA256,
			SourceFileID:  pf.SourceFileID,
			DurationTotal: time.Since(totalStart),
		}, nil
	}

	// Phase 2: Stage
	log.Info().Msg("starting staging")
	if err := UpdateStatus(ctx, pool, pf.SourceFileID, StatusStaging); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	stageResult, err := Stage(ctx, pool, log, pf)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.SourceFileID, StatusFailed)
		if !cfg.KeepFailed {
			if cerr := Cleanup(ctx, pool, log, pf.IngestBatchID); cerr != nil {
				log.Warn().Err(cerr).Msg("failed batch cleanup failed (non-fatal)")
			}
		}
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	// Phase 3: Finalize
	log.Info().Msg("finalizing")
	finalizeDur, err := Finalize(ctx, pool, log, pf, stageResult.RowsStaged)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.SourceFileID, StatusFailed)
		return nil, &PipelineError{Phase: "finalize", Err: err}
	}

	summary := &model.IngestSummary{
		FilePath:      pf.FilePath,
		FileSHA256:    pf.FileSHA256,
		SourceFileID:  pf.SourceFileID,
		IngestBatchID: pf.IngestBatchID.String(),
		RowsRead:      pf.Load.RowsRead,
		RowsStaged:    stageResult.RowsStaged,
		ParseErrors:   pf.Load.ParseErrors,
		DurationMap:   pf.Load.Duration,
		DurationCopy:  stageResult.Duration,
		DurationTotal: time.Since(totalStart),
	}

	log.Info().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_staged", summary.RowsStaged).
		Int64("parse_errors", summary.ParseErrors).
		Str("batch", summary.IngestBatchID).
		Str("finalize_duration", finalizeDur.String()).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("ingest pipeline complete")

	return summary, nil
}
