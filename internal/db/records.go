package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/rvustats/internal/model"
	embedsql "github.com/gyeh/rvustats/internal/sql"
)

// ErrNoBatch is returned when no load has completed yet.
var ErrNoBatch = errors.New("no loaded batch")

// LatestBatch returns the ingest batch id of the most recently loaded file.
func LatestBatch(ctx context.Context, pool *pgxpool.Pool) (string, error) {
	var batch string
	err := pool.QueryRow(ctx, embedsql.LatestBatch).Scan(&batch)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoBatch
	}
	if err != nil {
		return "", fmt.Errorf("latest batch: %w", err)
	}
	return batch, nil
}

// LoadRecords reads one ingest batch back as records in source row order.
// An empty batch selects the latest loaded one.
func LoadRecords(ctx context.Context, pool *pgxpool.Pool, batch string) ([]model.Record, error) {
	if batch == "" {
		var err error
		if batch, err = LatestBatch(ctx, pool); err != nil {
			return nil, err
		}
	}

	rows, err := pool.Query(ctx, embedsql.SelectRecords, batch)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var (
			r                       model.Record
			date                    *time.Time
			raw                     *string
			tat, pointsPer, procPer *float64
		)
		if err := rows.Scan(
			&r.SourceRow, &date, &r.CreatedAt, &r.FinalizedAt, &raw, &tat,
			&r.Provider, &r.Modality, &r.Section, &r.Shift,
			&r.RVU, &r.Points, &r.Procedures, &r.HalfDays,
			&pointsPer, &procPer,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if date != nil {
			d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
			r.Date = &d
		}
		r.CreatedAt = utc(r.CreatedAt)
		r.FinalizedAt = utc(r.FinalizedAt)
		if raw != nil {
			r.RawDuration = *raw
		}
		if tat != nil {
			r.TAT = model.Minutes(*tat)
		}
		if pointsPer != nil {
			r.PointsPerHalfDay = model.KnownMeasure(*pointsPer)
		}
		if procPer != nil {
			r.ProceduresPerHalfDay = model.KnownMeasure(*procPer)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
