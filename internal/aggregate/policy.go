// Package aggregate computes turnaround and productivity statistics over a
// filtered record set. All functions are pure and deterministic for a given
// input order.
package aggregate

import "fmt"

// MeanPolicy decides how unknown durations enter a mean.
type MeanPolicy int

const (
	// UnknownAsZero counts unknown durations as zero-minute contributions.
	UnknownAsZero MeanPolicy = iota
	// ExcludeUnknown averages over known durations only.
	ExcludeUnknown
)

// ParsePolicy accepts "zero" and "exclude".
func ParsePolicy(s string) (MeanPolicy, error) {
	switch s {
	case "", "zero":
		return UnknownAsZero, nil
	case "exclude":
		return ExcludeUnknown, nil
	default:
		return 0, fmt.Errorf("unknown mean policy %q", s)
	}
}

func (p MeanPolicy) String() string {
	if p == ExcludeUnknown {
		return "exclude"
	}
	return "zero"
}
