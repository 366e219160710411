package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/rvustats/internal/sql"
)

// Finalize marks the source file loaded with this run's batch and runs ANALYZE.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, pf *PreflightResult, rowsLoaded int64) (time.Duration, error) {
	start := time.Now()

	if _, err := pool.Exec(ctx, embedsql.MarkLoaded, pf.SourceFileID, pf.IngestBatchID, rowsLoaded); err != nil {
		return 0, fmt.Errorf("mark loaded: %w", err)
	}
	log.Info().
		Int64("source_file_id", pf.SourceFileID).
		Str("batch", pf.IngestBatchID.String()).
		Msg("source file loaded")

	if _, err := pool.Exec(ctx, embedsql.AnalyzeRecords); err != nil {
		return 0, fmt.Errorf("analyze records: %w", err)
	}
	log.Info().Msg("ANALYZE complete")

	return time.Since(start), nil
}
