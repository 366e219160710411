package normalize

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/gyeh/rvustats/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseDuration_Strings(t *testing.T) {
	syn := DefaultSynonyms()
	tests := []struct {
		in        string
		want      float64
		wantKnown bool
	}{
		{"2:30:00", 150, true},
		{"02:30:00", 150, true},
		{"0:00:00", 0, true},
		{"28:06:07", 28*60 + 6 + 7.0/60, true},
		{"0:01:30.5", 1 + 30.5/60, true},
		{"1.04:06:07", 1440 + 246 + 7.0/60, true},
		{"1 04:06:07", 1440 + 246 + 7.0/60, true},
		{"1 days 04:06:07", 1440 + 246 + 7.0/60, true},
		{"2 day 00:00:30", 2*1440 + 0.5, true},
		{"  1.04:06:07  ", 1440 + 246 + 7.0/60, true},
		{"an hour", 60, true},
		{"An  Hour", 60, true},
		{"a day", 1440, true},

		{"", 0, false},
		{"   ", 0, false},
		{"two hours", 0, false},
		{"a minute", 0, false},
		{"1:75:00", 0, false},
		{"1:05:60", 0, false},
		{"1.25:00:00", 0, false},
		{"-0:05:00", 0, false},
		{"-1.04:06:07", 0, false},
		{"150", 0, false},
		{"12:30", 0, false},
		{"N/A", 0, false},
	}
	for _, tt := range tests {
		got := ParseDuration(tt.in, syn)
		if got.Known != tt.wantKnown {
			t.Errorf("ParseDuration(%q).Known = %v, want %v", tt.in, got.Known, tt.wantKnown)
			continue
		}
		if tt.wantKnown && !approx(got.Minutes, tt.want) {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got.Minutes, tt.want)
		}
	}
}

func TestParseDuration_WorkedExample(t *testing.T) {
	got := ParseDuration("1.04:06:07", nil)
	if !got.Known {
		t.Fatal("expected known duration")
	}
	if math.Abs(got.Minutes-1686.12) > 0.01 {
		t.Errorf("got %v, want ~1686.12", got.Minutes)
	}
}

func TestParseDuration_NilSynonymTable(t *testing.T) {
	if got := ParseDuration("an hour", nil); got.Known {
		t.Errorf("expected unknown without a synonym table, got %+v", got)
	}
}

func TestParseDuration_ConfiguredSynonyms(t *testing.T) {
	syn := Synonyms{SynonymKey("Half An Hour"): 30}
	got := ParseDuration("half an hour", syn)
	if !got.Known || got.Minutes != 30 {
		t.Errorf("got %+v, want 30 known", got)
	}
	if got := ParseDuration("an hour", syn); got.Known {
		t.Errorf("default synonyms must not leak into a configured table, got %+v", got)
	}
}

func TestParseDuration_Typed(t *testing.T) {
	str := "0:10:00"
	tests := []struct {
		name      string
		in        any
		want      float64
		wantKnown bool
	}{
		{"nil", nil, 0, false},
		{"nil string ptr", (*string)(nil), 0, false},
		{"string ptr", &str, 10, true},
		{"time.Duration", 90 * time.Minute, 90, true},
		{"negative time.Duration", -time.Minute, 0, false},
		{"float64", 12.5, 12.5, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", 45, 45, true},
		{"int64", int64(7), 7, true},
		{"negative float", -3.0, 0, false},
		{"NaN", math.NaN(), 0, false},
		{"Inf", math.Inf(1), 0, false},
		{"known Duration", model.Duration{Minutes: 5, Known: true}, 5, true},
		{"unknown Duration", model.Unknown, 0, false},
		{"bool", true, 0, false},
		{"struct", struct{}{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDuration(tt.in, DefaultSynonyms())
			if got.Known != tt.wantKnown {
				t.Fatalf("Known = %v, want %v", got.Known, tt.wantKnown)
			}
			if tt.wantKnown && !approx(got.Minutes, tt.want) {
				t.Errorf("Minutes = %v, want %v", got.Minutes, tt.want)
			}
		})
	}
}

func TestParseDuration_Idempotent(t *testing.T) {
	for _, in := range []string{"2:30:00", "1.04:06:07", "an hour", "0:00:00"} {
		first := ParseDuration(in, DefaultSynonyms())
		again := ParseDuration(first, DefaultSynonyms())
		if again != first {
			t.Errorf("%q: re-normalizing %+v gave %+v", in, first, again)
		}
		again = ParseDuration(first.Minutes, DefaultSynonyms())
		if again != first {
			t.Errorf("%q: re-normalizing minutes %v gave %+v", in, first.Minutes, again)
		}
	}
}

func TestParseDuration_ClockProperty(t *testing.T) {
	for h := 0; h < 30; h += 7 {
		for m := 0; m < 60; m += 13 {
			for s := 0; s < 60; s += 17 {
				in := fmt.Sprintf("%d:%02d:%02d", h, m, s)
				got := ParseDuration(in, nil)
				want := float64(h*60+m) + float64(s)/60
				if !got.Known || !approx(got.Minutes, want) {
					t.Errorf("%s: got %+v, want %v", in, got, want)
				}
				for _, d := range []int{1, 3} {
					if h >= 24 {
						continue
					}
					in := fmt.Sprintf("%d.%02d:%02d:%02d", d, h, m, s)
					got := ParseDuration(in, nil)
					want := float64(d*1440) + float64(h*60+m) + float64(s)/60
					if !got.Known || !approx(got.Minutes, want) {
						t.Errorf("%s: got %+v, want %v", in, got, want)
					}
				}
			}
		}
	}
}
