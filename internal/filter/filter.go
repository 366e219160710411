// Package filter selects subsets of mapped records. Filters never modify the
// records they are given.
package filter

import (
	"errors"
	"fmt"
	"time"

	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
)

// ErrInvalidRange is returned when a date range starts after it ends.
var ErrInvalidRange = errors.New("invalid date range")

// DefaultWindowDays is the trailing window used by the trend view.
const DefaultWindowDays = 7

// Predicate reports whether a record is kept.
type Predicate func(r *model.Record) bool

// Apply returns the records matching every predicate, in input order.
// Nil predicates are ignored.
func Apply(records []model.Record, preds ...Predicate) []model.Record {
	out := make([]model.Record, 0, len(records))
next:
	for i := range records {
		for _, p := range preds {
			if p != nil && !p(&records[i]) {
				continue next
			}
		}
		out = append(out, records[i])
	}
	return out
}

// ValidateRange checks that from is not after to. Either bound may be zero.
func ValidateRange(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidRange,
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return nil
}

// DateRange keeps records whose day falls in [from, to], inclusive. A zero
// bound is open. Records with no usable date are dropped.
func DateRange(from, to time.Time) Predicate {
	from = truncate(from)
	to = truncate(to)
	return func(r *model.Record) bool {
		day, ok := r.Day()
		if !ok {
			return false
		}
		if !from.IsZero() && day.Before(from) {
			return false
		}
		if !to.IsZero() && day.After(to) {
			return false
		}
		return true
	}
}

// LatestDay is the most recent record day. ok is false when no record
// carries a date.
func LatestDay(records []model.Record) (latest time.Time, ok bool) {
	for i := range records {
		day, has := records[i].Day()
		if has && (!ok || day.After(latest)) {
			latest, ok = day, true
		}
	}
	return latest, ok
}

// TrailingWindow is the inclusive range of days ending at latest. days <= 0
// means DefaultWindowDays.
func TrailingWindow(latest time.Time, days int) (from, to time.Time) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	to = truncate(latest)
	return to.AddDate(0, 0, -days), to
}

func truncate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Providers keeps records whose provider matches one of names, compared
// case- and whitespace-insensitively. No names keeps everything.
func Providers(names ...string) Predicate {
	return oneOf(names, func(r *model.Record) string { return r.Provider })
}

// Modalities keeps records with one of the given modalities.
func Modalities(names ...string) Predicate {
	return oneOf(names, func(r *model.Record) string { return r.Modality })
}

// Sections keeps records with one of the given sections.
func Sections(names ...string) Predicate {
	return oneOf(names, func(r *model.Record) string { return r.Section })
}

// Shifts keeps records with one of the given shift labels.
func Shifts(names ...string) Predicate {
	return oneOf(names, func(r *model.Record) string { return r.Shift })
}

// KnownDuration keeps records whose turnaround time is known.
func KnownDuration() Predicate {
	return func(r *model.Record) bool { return r.TAT.Known }
}

func oneOf(names []string, field func(*model.Record) string) Predicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if k := normalize.NormalizeName(n); k != "" {
			set[k] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return func(r *model.Record) bool {
		_, ok := set[normalize.NormalizeName(field(r))]
		return ok
	}
}
