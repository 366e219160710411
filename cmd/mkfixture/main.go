// mkfixture writes a synthetic exam fixture covering every turnaround shape
// the normalizer handles: day-prefixed clocks, plain clocks, synonyms, blanks,
// negatives, and garbage.
// Usage: go run ./cmd/mkfixture --out testdata/exams.csv --rows 500 --seed 1
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/rvustats/internal/export"
	"github.com/gyeh/rvustats/internal/logging"
	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
	"github.com/gyeh/rvustats/internal/schema"
	"github.com/gyeh/rvustats/internal/source"
)

var (
	providers  = []string{"Smith, John", "Lee, Ann", "Diaz, Rosa", "Okafor, Chidi", "Novak, Eva"}
	modalities = []string{"CT", "MR", "XR", "US", "NM"}
	sections   = []string{"Body", "Neuro", "MSK", "Chest"}
	shifts     = []string{"Day", "Evening", "Overnight"}
)

func main() {
	out := flag.String("out", "testdata/exams.csv", "output file (.csv, .xlsx, or .parquet)")
	rows := flag.Int("rows", 500, "rows to generate")
	seed := flag.Int64("seed", 1, "random seed")
	start := flag.String("start", "2024-01-01", "first exam date")
	days := flag.Int("days", 60, "number of days to spread exams over")
	checkOnly := flag.Bool("check", false, "only read --out back and print stats, don't write")
	flag.Parse()

	log := logging.Setup("text", "info")

	if *checkOnly {
		if err := check(*out, log); err != nil {
			fmt.Fprintf(os.Stderr, "check: %v\n", err)
			os.Exit(1)
		}
		return
	}

	first := normalize.ParseDate(*start)
	if first == nil {
		fmt.Fprintf(os.Stderr, "bad --start %q\n", *start)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	records := make([]model.Record, 0, *rows)
	for i := 0; i < *rows; i++ {
		records = append(records, synth(rng, int64(i+1), *first, *days))
	}

	if err := export.WriteFile(*out, records, log); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}

	var unknown int
	for _, r := range records {
		if !r.TAT.Known {
			unknown++
		}
	}
	fmt.Printf("Wrote %d rows to %s (%d with unknown turnaround)\n", len(records), *out, unknown)
}

func synth(rng *rand.Rand, row int64, first time.Time, days int) model.Record {
	day := first.AddDate(0, 0, rng.Intn(days))
	created := day.Add(time.Duration(rng.Intn(24*60)) * time.Minute)
	minutes := rng.Intn(3 * 24 * 60)
	finalized := created.Add(time.Duration(minutes) * time.Minute)

	raw := rawDuration(rng, minutes)
	r := model.Record{
		SourceRow:   row,
		Date:        &day,
		CreatedAt:   &created,
		FinalizedAt: &finalized,
		RawDuration: raw,
		TAT:         normalize.ParseDuration(raw, normalize.DefaultSynonyms()),
		Provider:    providers[rng.Intn(len(providers))],
		Modality:    modalities[rng.Intn(len(modalities))],
		Section:     sections[rng.Intn(len(sections))],
		Shift:       shifts[rng.Intn(len(shifts))],
		RVU:         float64(rng.Intn(40)) / 10,
		Points:      float64(rng.Intn(20)),
		Procedures:  float64(1 + rng.Intn(5)),
		HalfDays:    float64(rng.Intn(3)),
	}
	r.PointsPerHalfDay = model.Ratio(r.Points, r.HalfDays)
	r.ProceduresPerHalfDay = model.Ratio(r.Procedures, r.HalfDays)
	return r
}

// rawDuration renders minutes in one of the shapes seen in practice exports.
func rawDuration(rng *rand.Rand, minutes int) string {
	d, h, m := minutes/1440, (minutes%1440)/60, minutes%60
	switch rng.Intn(10) {
	case 0:
		return "an hour"
	case 1:
		return "a day"
	case 2:
		return ""
	case 3:
		return "pending"
	case 4:
		return fmt.Sprintf("-%d:%02d:00", h, m)
	case 5:
		return fmt.Sprintf("%d days %02d:%02d:00", d, h, m)
	case 6:
		return fmt.Sprintf("%d:%02d:%02d", d*24+h, m, rng.Intn(60))
	default:
		return fmt.Sprintf("%d.%02d:%02d:00", d, h, m)
	}
}

func check(path string, log zerolog.Logger) error {
	tbl, err := source.Open(context.Background(), source.Ref{Path: path})
	if err != nil {
		return err
	}
	records, sum, err := schema.Map(tbl, schema.Options{Synonyms: normalize.DefaultSynonyms()}, log)
	if err != nil {
		return err
	}

	byModality := make(map[string]int)
	for _, r := range records {
		byModality[r.Modality]++
	}
	fmt.Printf("Read %d rows, %d unknown turnaround, %d parse errors\n",
		sum.RowsMapped, sum.UnknownDuration, sum.ParseErrors)
	fmt.Println("Modality distribution:")
	for _, m := range modalities {
		fmt.Printf("  %-10s %d\n", m, byModality[m])
	}
	return nil
}
