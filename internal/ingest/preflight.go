package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/rvustats/internal/config"
	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
	"github.com/gyeh/rvustats/internal/schema"
	"github.com/gyeh/rvustats/internal/source"
	embedsql "github.com/gyeh/rvustats/internal/sql"
)

// PreflightResult holds all context resolved during the preflight phase.
type PreflightResult struct {
	// FilePath is the original path passed in the config, stored as-is.
	FilePath string
	// FileSHA256 is the hex-encoded SHA-256 digest of the file.
	FileSHA256 string
	// FileSize is the file size in bytes from os.Stat.
	FileSize int64
	// SourceFileID is the ingest.source_files key, inserted or looked up by sha256.
	SourceFileID int64
	// IngestBatchID tags every row this run copies.
	IngestBatchID uuid.UUID
	// Records are the mapped rows waiting to be staged.
	Records []model.Record
	// Load reports the mapping pass.
	Load *model.LoadSummary
	// AlreadyLoaded is true when the file was loaded before and force is off.
	AlreadyLoaded bool
	// Replacing is true when rows from an earlier load of the same file must
	// be removed before staging.
	Replacing bool
}

// Preflight hashes the file, reads and maps it through the schema, and
// registers it in ingest.source_files. A missing required column fails here,
// before anything is written.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*PreflightResult, error) {
	start := time.Now()

	sha, err := normalize.FileHash(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}

	stat, err := os.Stat(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("preflight stat: %w", err)
	}

	tbl, err := source.Open(ctx, source.Ref{Path: cfg.FilePath, Sheet: cfg.Sheet, Query: cfg.Query})
	if err != nil {
		return nil, fmt.Errorf("preflight open: %w", err)
	}

	records, load, err := schema.Map(tbl, cfg.SchemaOptions(), log)
	if err != nil {
		return nil, fmt.Errorf("preflight validate: %w", err)
	}
	load.SourceSHA256 = sha

	log.Info().
		Str("file", filepath.Base(cfg.FilePath)).
		Str("sha256", sha).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	id, alreadyLoaded, replacing, err := registerSourceFile(ctx, pool, cfg, sha, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("preflight register file: %w", err)
	}

	return &PreflightResult{
		FilePath:      cfg.FilePath,
		FileSHA256:    sha,
		FileSize:      stat.Size(),
		SourceFileID:  id,
		IngestBatchID: uuid.New(),
		Records:       records,
		Load:          load,
		AlreadyLoaded: alreadyLoaded,
		Replacing:     replacing,
	}, nil
}

func registerSourceFile(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, sha string, size int64) (id int64, alreadyLoaded, replacing bool, err error) {
	err = pool.QueryRow(ctx, embedsql.RegisterSourceFile,
		filepath.Base(cfg.FilePath), sha, cfg.Profile, size,
	).Scan(&id)
	if err == nil {
		return id, false, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, false, fmt.Errorf("register source file: %w", err)
	}

	// Already registered (ON CONFLICT DO NOTHING returned no rows)
	var status string
	if err := pool.QueryRow(ctx, embedsql.LookupSourceFile, sha).Scan(&id, &status); err != nil {
		return 0, false, false, fmt.Errorf("lookup existing source file: %w", err)
	}
	if !cfg.Force && status == StatusLoaded {
		return id, true, false, nil
	}

	// Reset status for re-load
	if err := UpdateStatus(ctx, pool, id, StatusPending); err != nil {
		return 0, false, false, fmt.Errorf("reset source status: %w", err)
	}
	return id, false, true, nil
}
