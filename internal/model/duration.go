package model

import "math"

// Duration is a turnaround time in minutes. The zero value is unknown, which
// is distinct from a known duration of zero minutes.
type Duration struct {
	Minutes float64
	Known   bool
}

// Unknown is the explicit "no data" duration.
var Unknown = Duration{}

// Minutes returns a known duration, or Unknown when m is negative or not finite.
func Minutes(m float64) Duration {
	if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return Unknown
	}
	return Duration{Minutes: m, Known: true}
}

// Measure is a derived value (rate, average) that may be unknown.
type Measure struct {
	Value float64
	Known bool
}

// KnownMeasure returns a known Measure, or an unknown one when v is not finite.
func KnownMeasure(v float64) Measure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Measure{}
	}
	return Measure{Value: v, Known: true}
}

// Ratio divides num by den. A zero or non-finite denominator, or a
// non-finite result, is unknown rather than a fault or an infinity.
func Ratio(num, den float64) Measure {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return Measure{}
	}
	return KnownMeasure(num / den)
}
