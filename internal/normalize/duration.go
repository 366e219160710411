package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gyeh/rvustats/internal/model"
)

var (
	// "1.04:06:07", "1 04:06:07", "1 days 04:06:07"
	dayClockRe = regexp.MustCompile(`^(-?)(\d+)(?:\.|\s+|\s*days?\s+)(\d{1,2}):(\d{2}):(\d{2}(?:\.\d+)?)$`)
	// "2:30:00", "28:06:07"
	clockRe = regexp.MustCompile(`^(-?)(\d+):(\d{2}):(\d{2}(?:\.\d+)?)$`)
)

// Synonyms maps free-text duration phrases to minutes. Keys are compared
// after SynonymKey normalization. The table is closed: text that is not a
// key is unknown.
type Synonyms map[string]float64

// DefaultSynonyms returns the phrases seen in practice exports.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		"an hour": 60,
		"a day":   1440,
	}
}

// SynonymKey lowercases, trims, and collapses whitespace.
func SynonymKey(s string) string {
	return multiSpace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Lookup returns the minutes for phrase, or ok=false.
func (s Synonyms) Lookup(phrase string) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	m, ok := s[SynonymKey(phrase)]
	return m, ok
}

// ParseDuration maps a raw turnaround value of unknown shape to minutes.
// It never fails: anything it cannot read, and anything negative, is
// model.Unknown. Numeric inputs are taken as minutes already, so the
// function is idempotent over its own output.
func ParseDuration(raw any, synonyms Synonyms) model.Duration {
	switch v := raw.(type) {
	case nil:
		return model.Unknown
	case model.Duration:
		if !v.Known {
			return model.Unknown
		}
		return model.Minutes(v.Minutes)
	case time.Duration:
		return model.Minutes(v.Minutes())
	case float64:
		return model.Minutes(v)
	case float32:
		return model.Minutes(float64(v))
	case int:
		return model.Minutes(float64(v))
	case int32:
		return model.Minutes(float64(v))
	case int64:
		return model.Minutes(float64(v))
	case *string:
		if v == nil {
			return model.Unknown
		}
		return parseDurationString(*v, synonyms)
	case string:
		return parseDurationString(v, synonyms)
	default:
		return model.Unknown
	}
}

func parseDurationString(s string, synonyms Synonyms) model.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Unknown
	}
	if m, ok := synonyms.Lookup(s); ok {
		return model.Minutes(m)
	}

	if g := dayClockRe.FindStringSubmatch(s); g != nil {
		days, err := strconv.ParseFloat(g[2], 64)
		if err != nil {
			return model.Unknown
		}
		clock, ok := clockMinutes(g[3], g[4], g[5], 24)
		if !ok {
			return model.Unknown
		}
		return signed(g[1], days*1440+clock)
	}

	if g := clockRe.FindStringSubmatch(s); g != nil {
		clock, ok := clockMinutes(g[2], g[3], g[4], math.Inf(1))
		if !ok {
			return model.Unknown
		}
		return signed(g[1], clock)
	}

	return model.Unknown
}

// clockMinutes converts H, MM, SS[.fff] to minutes. Minutes and seconds
// must be below 60 and hours below maxHours.
func clockMinutes(hh, mm, ss string, maxHours float64) (float64, bool) {
	h, err := strconv.ParseFloat(hh, 64)
	if err != nil || h >= maxHours {
		return 0, false
	}
	m, err := strconv.ParseFloat(mm, 64)
	if err != nil || m >= 60 {
		return 0, false
	}
	sec, err := strconv.ParseFloat(ss, 64)
	if err != nil || sec >= 60 {
		return 0, false
	}
	return h*60 + m + sec/60, true
}

func signed(sign string, minutes float64) model.Duration {
	if sign == "-" && minutes != 0 {
		return model.Unknown
	}
	return model.Minutes(minutes)
}
