package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/rvustats/internal/model"
)

// RecordsTable is the COPY target for exam records.
var RecordsTable = pgx.Identifier{"rvu", "exam_records"}

// RecordColumns returns the COPY column list, matching RecordValues.
func RecordColumns() []string {
	return []string{
		"source_file_id", "ingest_batch_id", "source_row",
		"exam_date", "created_at", "finalized_at", "raw_duration", "tat_minutes",
		"provider", "modality", "section", "shift",
		"rvu", "points", "procedures", "half_days",
		"points_per_half_day", "procedures_per_half_day",
	}
}

// RecordValues flattens r in RecordColumns order. Unknown durations and
// measures become NULL.
func RecordValues(fileID int64, batchID uuid.UUID, r *model.Record) []any {
	return []any{
		fileID, batchID, r.SourceRow,
		r.Date, r.CreatedAt, r.FinalizedAt, nilIfEmpty(r.RawDuration), durationValue(r.TAT),
		r.Provider, r.Modality, r.Section, r.Shift,
		r.RVU, r.Points, r.Procedures, r.HalfDays,
		measureValue(r.PointsPerHalfDay), measureValue(r.ProceduresPerHalfDay),
	}
}

func durationValue(d model.Duration) *float64 {
	if !d.Known {
		return nil
	}
	return &d.Minutes
}

func measureValue(m model.Measure) *float64 {
	if !m.Known {
		return nil
	}
	return &m.Value
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ChannelSource implements pgx.CopyFromSource by reading records from a channel.
// This provides natural backpressure between the mapper and COPY writer.
type ChannelSource struct {
	ch      <-chan *model.Record
	fileID  int64
	batchID uuid.UUID
	current *model.Record
	err     error
}

// NewChannelSource creates a CopyFromSource backed by a channel. Every row is
// tagged with fileID and batchID.
func NewChannelSource(ch <-chan *model.Record, fileID int64, batchID uuid.UUID) *ChannelSource {
	return &ChannelSource{ch: ch, fileID: fileID, batchID: batchID}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource) Values() ([]any, error) {
	return RecordValues(s.fileID, s.batchID, s.current), nil
}

// Err returns any error encountered during iteration.
func (s *ChannelSource) Err() error {
	return s.err
}

// Compile-time check that ChannelSource satisfies the interface.
var _ pgx.CopyFromSource = (*ChannelSource)(nil)
