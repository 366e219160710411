package model

import "time"

// Record is one exam row after schema mapping and normalization. Records are
// never edited after Map returns; filters select subsets.
type Record struct {
	SourceRow int64

	Date        *time.Time // report date (date-only), nil when absent or unparseable
	CreatedAt   *time.Time
	FinalizedAt *time.Time

	RawDuration string
	TAT         Duration

	Provider string
	Modality string
	Section  string
	Shift    string

	RVU        float64
	Points     float64
	Procedures float64
	HalfDays   float64

	PointsPerHalfDay     Measure
	ProceduresPerHalfDay Measure
}

// EventTime is the best timestamp for time-of-day bucketing: finalized,
// then created, then the report date.
func (r *Record) EventTime() *time.Time {
	switch {
	case r.FinalizedAt != nil:
		return r.FinalizedAt
	case r.CreatedAt != nil:
		return r.CreatedAt
	default:
		return r.Date
	}
}

// Day returns the calendar day the record belongs to, truncated to midnight UTC.
func (r *Record) Day() (time.Time, bool) {
	t := r.Date
	if t == nil {
		t = r.EventTime()
	}
	if t == nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
