package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName tags rvustats sessions in pg_stat_activity.
const ApplicationName = "rvustats"

// NewPool opens a pool for exam-record loads and report reads. Sessions run
// in UTC so timestamptz columns scan back as the UTC instants that were
// copied in, and COPY batches are not cut off by a server statement_timeout.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	params := cfg.ConnConfig.RuntimeParams
	params["statement_timeout"] = "0"
	params["TimeZone"] = "UTC"
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = ApplicationName
	}

	// One COPY plus its status updates; a report read needs a single conn.
	if cfg.MaxConns > 4 {
		cfg.MaxConns = 4
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database %s: %w", cfg.ConnConfig.Host, err)
	}

	return pool, nil
}
