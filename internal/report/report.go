// Package report runs the load, map, filter pipeline for the CLI and renders
// the results as console tables.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/rvustats/internal/filter"
	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/schema"
	"github.com/gyeh/rvustats/internal/source"
)

// ErrNoData is returned when a source or a selection yields no records.
var ErrNoData = errors.New("no data")

// Load reads ref through cache and maps it to records. A source with no
// mapped rows is ErrNoData.
func Load(ctx context.Context, cache *source.Cache, ref source.Ref, opts schema.Options, log zerolog.Logger) ([]model.Record, *model.LoadSummary, error) {
	t, err := cache.Open(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	records, sum, err := schema.Map(t, opts, log)
	if err != nil {
		return nil, nil, err
	}
	sum.SourceSHA256 = t.SHA256
	if len(records) == 0 {
		return nil, sum, ErrNoData
	}
	return records, sum, nil
}

// Selection is the set of filters a report runs with. The zero value keeps
// every record.
type Selection struct {
	From, To time.Time
	Latest   bool // only the most recent day
	Days     int  // trailing window ending at the most recent day; 0 disables

	Providers  []string
	Modalities []string
	Sections   []string
	Shifts     []string
	KnownOnly  bool
}

// Apply filters records. An invalid range is filter.ErrInvalidRange; an
// empty result is ErrNoData.
func (s Selection) Apply(records []model.Record) ([]model.Record, error) {
	if err := filter.ValidateRange(s.From, s.To); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	from, to := s.From, s.To
	if s.Latest || s.Days > 0 {
		latest, ok := filter.LatestDay(records)
		if !ok {
			return nil, ErrNoData
		}
		if s.Latest {
			from, to = latest, latest
		} else {
			from, to = filter.TrailingWindow(latest, s.Days)
		}
	}

	preds := []filter.Predicate{
		filter.Providers(s.Providers...),
		filter.Modalities(s.Modalities...),
		filter.Sections(s.Sections...),
		filter.Shifts(s.Shifts...),
	}
	if !from.IsZero() || !to.IsZero() {
		preds = append(preds, filter.DateRange(from, to))
	}
	if s.KnownOnly {
		preds = append(preds, filter.KnownDuration())
	}

	out := filter.Apply(records, preds...)
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}
