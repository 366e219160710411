package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/rvustats/internal/db"
	"github.com/gyeh/rvustats/internal/model"
	embedsql "github.com/gyeh/rvustats/internal/sql"
)

const copyBufferSize = 1024

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsStaged int64
	Duration   time.Duration
}

// Stage COPY-loads the preflight records into rvu.exam_records via a
// channel-backed CopyFromSource. Rows from an earlier load of the same file
// are removed first.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, pf *PreflightResult) (*StageResult, error) {
	start := time.Now()

	if pf.Replacing {
		tag, err := pool.Exec(ctx, embedsql.DeleteFileRecords, pf.SourceFileID)
		if err != nil {
			return nil, fmt.Errorf("stage delete previous rows: %w", err)
		}
		log.Info().Int64("rows_deleted", tag.RowsAffected()).Msg("previous load removed")
	}

	ch := make(chan *model.Record, copyBufferSize)
	errCh := make(chan error, 1)

	// Producer goroutine: push mapped records to the channel
	go func() {
		defer close(ch)
		for i := range pf.Records {
			select {
			case ch <- &pf.Records[i]:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	// Consumer: COPY from channel into the records table
	src := db.NewChannelSource(ch, pf.SourceFileID, pf.IngestBatchID)
	rowsStaged, err := pool.CopyFrom(ctx, db.RecordsTable, db.RecordColumns(), src)
	if err != nil {
		// Unblock the producer if COPY stopped early.
		for range ch {
		}
	}

	// Wait for producer to finish
	prodErr := <-errCh
	if prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_staged", rowsStaged).
		Str("duration", dur.String()).
		Float64("rows_per_sec", float64(rowsStaged)/dur.Seconds()).
		Msg("staging complete")

	return &StageResult{RowsStaged: rowsStaged, Duration: dur}, nil
}

// UpdateStatus updates the source file status.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, sourceFileID int64, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateSourceStatus, sourceFileID, status)
	return err
}
