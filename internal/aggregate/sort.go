package aggregate

import (
	"fmt"
	"sort"
)

// Metric names a sortable group column.
type Metric string

const (
	MetricCount                = Metric("count")
	MetricRVU                  = Metric("rvu")
	MetricPoints               = Metric("points")
	MetricProcedures           = Metric("procedures")
	MetricMeanTAT              = Metric("mean_tat")
	MetricRVUPerMinute         = Metric("rvu_per_minute")
	MetricPointsPerHalfDay     = Metric("points_per_half_day")
	MetricProceduresPerHalfDay = Metric("procedures_per_half_day")
)

// AllMetrics lists the sortable metrics.
var AllMetrics = []Metric{
	MetricCount, MetricRVU, MetricPoints, MetricProcedures,
	MetricMeanTAT, MetricRVUPerMinute, MetricPointsPerHalfDay, MetricProceduresPerHalfDay,
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	for _, m := range AllMetrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Value returns the group's value for m and whether it is known.
func (g *Group) Value(m Metric) (float64, bool) {
	switch m {
	case MetricCount:
		return float64(g.Count), true
	case MetricRVU:
		return g.RVU, true
	case MetricPoints:
		return g.Points, true
	case MetricProcedures:
		return g.Procedures, true
	case MetricMeanTAT:
		return g.MeanTAT.Minutes, g.MeanTAT.Known
	case MetricRVUPerMinute:
		return g.RVUPerMinute.Value, g.RVUPerMinute.Known
	case MetricPointsPerHalfDay:
		return g.MeanPointsPerHalfDay.Value, g.MeanPointsPerHalfDay.Known
	case MetricProceduresPerHalfDay:
		return g.MeanProceduresPerHalfDay.Value, g.MeanProceduresPerHalfDay.Known
	default:
		return 0, false
	}
}

// SortByMetric returns a copy of groups ordered by m, highest first.
// Unknown values sort last; ties keep their first-occurrence order.
func SortByMetric(groups []Group, m Metric) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		vi, ki := out[i].Value(m)
		vj, kj := out[j].Value(m)
		if ki != kj {
			return ki
		}
		return ki && vi > vj
	})
	return out
}

// TopN is SortByMetric truncated to n groups. n <= 0 returns all.
func TopN(groups []Group, m Metric, n int) []Group {
	out := SortByMetric(groups, m)
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
