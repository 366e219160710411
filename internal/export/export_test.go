package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/rvustats/internal/aggregate"
	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/schema"
	"github.com/gyeh/rvustats/internal/source"
)

const inputCSV = `Date,Created,Finalized,Turnaround Time,Author,Modality,Section,Shift,RVU,Points,Procedures,Half Days
2024-03-01,2024-03-01 08:00:00,2024-03-01 09:30:00,0.01:30:00," smith,  john ",CT,Body,Day,"1,234.5",3,2,1
03/05/2024,2024-03-05 10:00:00,2024-03-05 10:45:00,,lee ann,MR,Neuro,Night,2.25,4,1,0
,,,an hour,DIAZ,XR,,,abc,,,
`

var opts = schema.Options{DeriveTAT: true}

func loadFixture(t *testing.T) []model.Record {
	t.Helper()
	tbl, err := source.ReadCSV(strings.NewReader(inputCSV), ',')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	records, sum, err := schema.Map(tbl, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if sum.ParseErrors != 1 {
		t.Fatalf("fixture parse errors: got %d, want 1", sum.ParseErrors)
	}
	return records
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func assertSameRecords(t *testing.T, got, want []model.Record) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("rows: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if !sameTime(g.Date, w.Date) || !sameTime(g.CreatedAt, w.CreatedAt) || !sameTime(g.FinalizedAt, w.FinalizedAt) {
			t.Errorf("row %d timestamps: got %v/%v/%v, want %v/%v/%v", i,
				g.Date, g.CreatedAt, g.FinalizedAt, w.Date, w.CreatedAt, w.FinalizedAt)
		}
		if g.RawDuration != w.RawDuration || g.TAT != w.TAT {
			t.Errorf("row %d duration: got %q %+v, want %q %+v", i, g.RawDuration, g.TAT, w.RawDuration, w.TAT)
		}
		if g.Provider != w.Provider || g.Modality != w.Modality || g.Section != w.Section || g.Shift != w.Shift {
			t.Errorf("row %d labels: got %q %q %q %q, want %q %q %q %q", i,
				g.Provider, g.Modality, g.Section, g.Shift, w.Provider, w.Modality, w.Section, w.Shift)
		}
		if g.RVU != w.RVU || g.Points != w.Points || g.Procedures != w.Procedures || g.HalfDays != w.HalfDays {
			t.Errorf("row %d metrics: got %v %v %v %v, want %v %v %v %v", i,
				g.RVU, g.Points, g.Procedures, g.HalfDays, w.RVU, w.Points, w.Procedures, w.HalfDays)
		}
		if g.PointsPerHalfDay != w.PointsPerHalfDay || g.ProceduresPerHalfDay != w.ProceduresPerHalfDay {
			t.Errorf("row %d per half-day: got %+v %+v, want %+v %+v", i,
				g.PointsPerHalfDay, g.ProceduresPerHalfDay, w.PointsPerHalfDay, w.ProceduresPerHalfDay)
		}
	}
}

func TestWriteCSV_Format(t *testing.T) {
	records := loadFixture(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines: got %d, want 4\n%s", len(lines), buf.String())
	}
	if want := strings.Join(model.FieldNames(), ","); lines[0] != want {
		t.Errorf("header: got %q, want %q", lines[0], want)
	}
	wantFirst := `2024-03-01T00:00:00Z,2024-03-01T08:00:00Z,2024-03-01T09:30:00Z,0.01:30:00,90,"Smith, John",CT,Body,Day,1234.5,3,2,1,3,2`
	if lines[1] != wantFirst {
		t.Errorf("row 1:\ngot  %s\nwant %s", lines[1], wantFirst)
	}
	// Zero half-days leaves both per-half-day cells empty.
	if !strings.HasSuffix(lines[2], ",0,,") {
		t.Errorf("row 2 should end with empty measures: %s", lines[2])
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	want := loadFixture(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, want); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	tbl, err := source.ReadCSV(&buf, ',')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	got, sum, err := schema.Map(tbl, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if sum.ParseErrors != 0 {
		t.Errorf("round trip parse errors: %d", sum.ParseErrors)
	}
	assertSameRecords(t, got, want)
}

func TestParquet_RoundTrip(t *testing.T) {
	want := loadFixture(t)
	path := filepath.Join(t.TempDir(), "out.parquet")
	if err := WriteFile(path, want, zerolog.Nop()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tbl, err := source.Open(context.Background(), source.Ref{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _, err := schema.Map(tbl, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	assertSameRecords(t, got, want)
}

func TestXLSX_RoundTrip(t *testing.T) {
	want := loadFixture(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteFile(path, want, zerolog.Nop()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tbl, err := source.Open(context.Background(), source.Ref{Path: path, Sheet: RecordsSheet})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _, err := schema.Map(tbl, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("rows: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Provider != want[i].Provider || got[i].TAT != want[i].TAT {
			t.Errorf("row %d: got %q %+v, want %q %+v", i, got[i].Provider, got[i].TAT, want[i].Provider, want[i].TAT)
		}
	}
}

func TestWriteFile_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	err := WriteFile(path, nil, zerolog.Nop())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("got %v, want ErrUnsupportedFormat", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be created for an unsupported format")
	}
}

func TestWriteGroupsCSV(t *testing.T) {
	groups := aggregate.GroupBy(loadFixture(t), aggregate.ByModality, aggregate.UnknownAsZero)
	var buf bytes.Buffer
	if err := WriteGroupsCSV(&buf, "modality", groups); err != nil {
		t.Fatalf("WriteGroupsCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines: got %d, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[0], "modality,count,known_tat,mean_tat_minutes") {
		t.Errorf("header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "CT,1,1,90,1234.5,3,2,1,") {
		t.Errorf("CT row: %s", lines[1])
	}
}
