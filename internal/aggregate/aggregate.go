package aggregate

import (
	"github.com/gyeh/rvustats/internal/model"
)

// Totals are the additive parts of a summary.
type Totals struct {
	Count      int
	KnownTAT   int
	TATMinutes float64 // sum over known durations
	RVU        float64
	TimedRVU   float64 // RVU of records whose turnaround is known
	Points     float64
	Procedures float64
	HalfDays   float64

	pointsPerHalfDay     meanAcc
	proceduresPerHalfDay meanAcc
}

type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v model.Measure) {
	if v.Known {
		m.sum += v.Value
		m.n++
	}
}

func (m meanAcc) mean() model.Measure {
	if m.n == 0 {
		return model.Measure{}
	}
	return model.KnownMeasure(m.sum / float64(m.n))
}

// Add folds one record into the totals.
func (t *Totals) Add(r *model.Record) {
	t.Count++
	if r.TAT.Known {
		t.KnownTAT++
		t.TATMinutes += r.TAT.Minutes
		t.TimedRVU += r.RVU
	}
	t.RVU += r.RVU
	t.Points += r.Points
	t.Procedures += r.Procedures
	t.HalfDays += r.HalfDays
	t.pointsPerHalfDay.add(r.PointsPerHalfDay)
	t.proceduresPerHalfDay.add(r.ProceduresPerHalfDay)
}

// MeanTAT applies policy to the accumulated durations. With no known
// durations the mean is unknown under either policy.
func (t *Totals) MeanTAT(p MeanPolicy) model.Duration {
	if t.KnownTAT == 0 {
		return model.Unknown
	}
	n := t.Count
	if p == ExcludeUnknown {
		n = t.KnownTAT
	}
	return model.Minutes(t.TATMinutes / float64(n))
}

// TotalTAT is the summed known turnaround, unknown when nothing is known.
func (t *Totals) TotalTAT() model.Duration {
	if t.KnownTAT == 0 {
		return model.Unknown
	}
	return model.Minutes(t.TATMinutes)
}

// RVURate is RVU over known turnaround minutes. Only records with a
// known turnaround contribute to the numerator.
func (t *Totals) RVURate() model.Measure {
	return Rate(t.TimedRVU, t.TotalTAT())
}

// MeanPointsPerHalfDay averages the per-record values that are known.
func (t *Totals) MeanPointsPerHalfDay() model.Measure {
	return t.pointsPerHalfDay.mean()
}

// MeanProceduresPerHalfDay averages the per-record values that are known.
func (t *Totals) MeanProceduresPerHalfDay() model.Measure {
	return t.proceduresPerHalfDay.mean()
}

// Summary is the overall KPI block for a record set.
type Summary struct {
	// NoData is true for an empty record set. It is distinct from a set
	// whose mean happens to be zero.
	NoData bool
	Policy MeanPolicy
	Totals
	MeanTAT      model.Duration
	RVUPerMinute model.Measure
}

// Summarize computes the overall KPIs.
func Summarize(records []model.Record, p MeanPolicy) Summary {
	s := Summary{Policy: p}
	if len(records) == 0 {
		s.NoData = true
		return s
	}
	for i := range records {
		s.Add(&records[i])
	}
	s.MeanTAT = s.Totals.MeanTAT(p)
	s.RVUPerMinute = s.Totals.RVURate()
	return s
}

// MeanDuration is the mean turnaround of records under policy. Empty input
// and all-unknown input are both unknown.
func MeanDuration(records []model.Record, p MeanPolicy) model.Duration {
	var t Totals
	for i := range records {
		t.Add(&records[i])
	}
	return t.MeanTAT(p)
}

// Rate divides num by a duration in minutes. An unknown or zero denominator
// yields an unknown rate.
func Rate(num float64, denom model.Duration) model.Measure {
	if !denom.Known {
		return model.Measure{}
	}
	return model.Ratio(num, denom.Minutes)
}

// PerHalfDay normalizes a productivity value by half-day shifts worked.
func PerHalfDay(value, halfDays float64) model.Measure {
	return model.Ratio(value, halfDays)
}
