package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/gyeh/rvustats/internal/model"
)

// Unassigned labels records whose grouping key is blank.
const Unassigned = "(unassigned)"

// KeyFunc extracts a grouping key from a record.
type KeyFunc func(r *model.Record) string

// Built-in grouping keys.
var (
	ByProvider KeyFunc = func(r *model.Record) string { return r.Provider }
	ByModality KeyFunc = func(r *model.Record) string { return r.Modality }
	BySection  KeyFunc = func(r *model.Record) string { return r.Section }
	ByShift    KeyFunc = func(r *model.Record) string { return r.Shift }
)

// KeyByName returns the built-in KeyFunc for name.
func KeyByName(name string) (KeyFunc, error) {
	switch name {
	case "provider", "":
		return ByProvider, nil
	case "modality":
		return ByModality, nil
	case "section":
		return BySection, nil
	case "shift":
		return ByShift, nil
	default:
		return nil, fmt.Errorf("unknown grouping %q; want provider, modality, section, or shift", name)
	}
}

// Group is one row of a grouped summary.
type Group struct {
	Key string
	Totals
	MeanTAT                  model.Duration
	RVUPerMinute             model.Measure
	MeanPointsPerHalfDay     model.Measure
	MeanProceduresPerHalfDay model.Measure
}

// GroupBy partitions records by key and summarizes each group. Groups come
// back in order of first occurrence.
func GroupBy(records []model.Record, key KeyFunc, p MeanPolicy) []Group {
	var order []string
	totals := make(map[string]*Totals)
	for i := range records {
		k := key(&records[i])
		if k == "" {
			k = Unassigned
		}
		t, ok := totals[k]
		if !ok {
			t = &Totals{}
			totals[k] = t
			order = append(order, k)
		}
		t.Add(&records[i])
	}

	groups := make([]Group, 0, len(order))
	for _, k := range order {
		t := totals[k]
		groups = append(groups, Group{
			Key:                      k,
			Totals:                   *t,
			MeanTAT:                  t.MeanTAT(p),
			RVUPerMinute:             t.RVURate(),
			MeanPointsPerHalfDay:     t.MeanPointsPerHalfDay(),
			MeanProceduresPerHalfDay: t.MeanProceduresPerHalfDay(),
		})
	}
	return groups
}

// Time buckets keyed on Record.EventTime. Records without any timestamp
// are left out.
var (
	monthKey KeyFunc = func(r *model.Record) string {
		if t := r.EventTime(); t != nil {
			return t.Format("2006-01")
		}
		return ""
	}
	hourKey KeyFunc = func(r *model.Record) string {
		if t := r.EventTime(); t != nil {
			return fmt.Sprintf("%02d", t.Hour())
		}
		return ""
	}
	weekdayKey KeyFunc = func(r *model.Record) string {
		if t := r.EventTime(); t != nil {
			return t.Weekday().String()
		}
		return ""
	}
)

// ByMonth groups by calendar month ("2006-01"), oldest first.
func ByMonth(records []model.Record, p MeanPolicy) []Group {
	return timeBuckets(records, monthKey, p, func(a, b string) bool { return a < b })
}

// ByHour groups by hour of day ("00".."23"), ascending.
func ByHour(records []model.Record, p MeanPolicy) []Group {
	return timeBuckets(records, hourKey, p, func(a, b string) bool { return a < b })
}

// ByWeekday groups by day of week, Monday first.
func ByWeekday(records []model.Record, p MeanPolicy) []Group {
	return timeBuckets(records, weekdayKey, p, func(a, b string) bool {
		return weekdayIndex(a) < weekdayIndex(b)
	})
}

func weekdayIndex(name string) int {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return (int(d) + 6) % 7
		}
	}
	return 7
}

func timeBuckets(records []model.Record, key KeyFunc, p MeanPolicy, less func(a, b string) bool) []Group {
	groups := GroupBy(records, key, p)
	out := groups[:0]
	for _, g := range groups {
		if g.Key != Unassigned {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i].Key, out[j].Key) })
	return out
}

// Cell is one row×column intersection of a cross tabulation.
type Cell struct {
	Row string
	Col string
	Totals
}

// CrossTab counts records by two keys, e.g. provider × modality. Cells
// come back in order of first occurrence.
func CrossTab(records []model.Record, row, col KeyFunc) []Cell {
	type pair struct{ r, c string }
	var order []pair
	cells := make(map[pair]*Totals)
	for i := range records {
		k := pair{row(&records[i]), col(&records[i])}
		if k.r == "" {
			k.r = Unassigned
		}
		if k.c == "" {
			k.c = Unassigned
		}
		t, ok := cells[k]
		if !ok {
			t = &Totals{}
			cells[k] = t
			order = append(order, k)
		}
		t.Add(&records[i])
	}

	out := make([]Cell, 0, len(order))
	for _, k := range order {
		out = append(out, Cell{Row: k.r, Col: k.c, Totals: *cells[k]})
	}
	return out
}

// MonthKey exposes the month bucket for cross tabulations.
func MonthKey() KeyFunc { return monthKey }
