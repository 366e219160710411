package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/rvustats/internal/sql"
)

// Migration is one embedded DDL file and, once run, when it was applied.
type Migration struct {
	Name      string
	AppliedAt *time.Time
}

// Migrations lists the embedded migration files in apply order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(embedsql.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ApplyMigrations runs every embedded migration not yet recorded in the
// ledger, each in its own transaction, in filename order. The DDL itself
// uses IF NOT EXISTS, so a database created before the ledger existed
// upgrades cleanly.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	status, err := MigrationStatus(ctx, pool)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range status {
		if m.AppliedAt != nil {
			log.Debug().Str("migration", m.Name).Msg("already applied")
			continue
		}
		data, err := fs.ReadFile(embedsql.Migrations, "migrations/"+m.Name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", m.Name, err)
		}

		log.Info().Str("migration", m.Name).Msg("applying migration")
		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, embedsql.RecordMigration, m.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("execute migration %s: %w", m.Name, err)
		}
		applied++
	}

	log.Info().Int("applied", applied).Int("total", len(status)).Msg("migrations up to date")
	return nil
}

// MigrationStatus reports every embedded migration with its applied time,
// creating the ledger table if needed.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) ([]Migration, error) {
	if _, err := pool.Exec(ctx, embedsql.MigrationLedger); err != nil {
		return nil, fmt.Errorf("create migration ledger: %w", err)
	}

	rows, err := pool.Query(ctx, embedsql.AppliedMigrations)
	if err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	done := map[string]time.Time{}
	for rows.Next() {
		var name string
		var at time.Time
		if err := rows.Scan(&name, &at); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan migration ledger: %w", err)
		}
		done[name] = at
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}

	names, err := Migrations()
	if err != nil {
		return nil, err
	}
	out := make([]Migration, len(names))
	for i, name := range names {
		out[i] = Migration{Name: name}
		if at, ok := done[name]; ok {
			out[i].AppliedAt = &at
		}
	}
	return out, nil
}
