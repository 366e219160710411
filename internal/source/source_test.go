package source

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestOpen_CSV(t *testing.T) {
	path := writeFile(t, "exams.csv",
		"\xEF\xBB\xBF Author ,TAT,RVU\n"+
			"smith,1.04:06:07,1.5\n"+
			"\n"+
			"\"Lee, Ann\",an hour,2\n"+
			"short\n")

	tbl, err := Open(context.Background(), Ref{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := strings.Join(tbl.Headers, "|"); got != "Author|TAT|RVU" {
		t.Errorf("headers: got %q", got)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(tbl.Rows))
	}
	if Cell(tbl.Rows[1], 0) != "Lee, Ann" {
		t.Errorf("quoted cell: got %q", Cell(tbl.Rows[1], 0))
	}
	if Cell(tbl.Rows[2], 2) != "" {
		t.Errorf("short row should read as empty, got %q", Cell(tbl.Rows[2], 2))
	}
	if tbl.Name != path {
		t.Errorf("name: got %q", tbl.Name)
	}
}

func TestOpen_SniffsDelimiter(t *testing.T) {
	semi := writeFile(t, "exams.csv", "author;tat\nsmith;2:30:00\n")
	tbl, err := Open(context.Background(), Ref{Path: semi})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(tbl.Headers) != 2 || Cell(tbl.Rows[0], 1) != "2:30:00" {
		t.Errorf("semicolon file misread: %+v", tbl)
	}

	tsv := writeFile(t, "exams.tsv", "author\ttat, raw\nsmith\t2:30:00\n")
	tbl, err = Open(context.Background(), Ref{Path: tsv})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(tbl.Headers) != 2 || tbl.Headers[1] != "tat, raw" {
		t.Errorf("tsv headers: %v", tbl.Headers)
	}
}

func TestOpen_EmptyCSV(t *testing.T) {
	path := writeFile(t, "empty.csv", "\n\n")
	_, err := Open(context.Background(), Ref{Path: path})
	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("expected SourceError, got %v", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(context.Background(), Ref{Path: filepath.Join(t.TempDir(), "nope.csv")})
	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("expected SourceError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist in chain, got %v", err)
	}
}

func TestOpen_Unsupported(t *testing.T) {
	path := writeFile(t, "exams.json", "[]")
	_, err := Open(context.Background(), Ref{Path: path})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestOpen_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rvu.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "ignored")
	if _, err := f.NewSheet("Daily"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetSheetRow("Daily", "A1", &[]any{"Date", "Author", "Points"})
	f.SetSheetRow("Daily", "A2", &[]any{"2024-03-05", "smith", 12.5})
	f.SetSheetRow("Daily", "A3", &[]any{"2024-03-05", "lee", 8})
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	tbl, err := Open(context.Background(), Ref{Path: path, Sheet: "Daily"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(tbl.Rows) != 2 || Cell(tbl.Rows[0], 1) != "smith" || Cell(tbl.Rows[0], 2) != "12.5" {
		t.Errorf("unexpected table: %+v", tbl)
	}

	first, err := Open(context.Background(), Ref{Path: path})
	if err != nil {
		t.Fatalf("Open first sheet: %v", err)
	}
	if first.Headers[0] != "ignored" {
		t.Errorf("expected first sheet, got headers %v", first.Headers)
	}

	if _, err := Open(context.Background(), Ref{Path: path, Sheet: "Weekly"}); err == nil {
		t.Error("expected error for missing sheet")
	}

	sheets, err := Sheets(path)
	if err != nil || len(sheets) != 2 {
		t.Errorf("Sheets: got %v, %v", sheets, err)
	}
}

func TestOpen_XLSXTypedDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rvu.xlsx")
	f := excelize.NewFile()
	f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Author", "Turnaround Time"})
	f.SetCellValue("Sheet1", "A2", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	f.SetCellValue("Sheet1", "B2", "smith")
	f.SetCellValue("Sheet1", "C2", float64(28*3600+6*60+7)/86400)
	f.SetCellValue("Sheet1", "A3", "2024-03-05")
	f.SetCellValue("Sheet1", "B3", "lee")

	short, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	hours := "[h]:mm:ss"
	elapsed, err := f.NewStyle(&excelize.Style{CustomNumFmt: &hours})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	f.SetCellStyle("Sheet1", "A2", "A2", short)
	f.SetCellStyle("Sheet1", "C2", "C2", elapsed)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	tbl, err := Open(context.Background(), Ref{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := normalize.ParseDate(Cell(tbl.Rows[0], 0)); got == nil || !got.Equal(want) {
		t.Errorf("short date cell %q: got %v, want %v", Cell(tbl.Rows[0], 0), got, want)
	}
	if got := Cell(tbl.Rows[0], 2); !strings.Contains(got, ":") {
		t.Errorf("elapsed cell should keep display text, got %q", got)
	}
	if got := Cell(tbl.Rows[1], 0); got != "2024-03-05" {
		t.Errorf("text date: got %q, want 2024-03-05", got)
	}
}

func TestIsDateFormat(t *testing.T) {
	str := func(s string) *string { return &s }
	tests := []struct {
		id     int
		custom *string
		want   bool
	}{
		{14, nil, true},
		{22, nil, true},
		{0, nil, false},
		{2, nil, false},
		{21, nil, false},
		{46, nil, false},
		{0, str("yyyy-mm-dd hh:mm:ss"), true},
		{0, str("d-mmm"), true},
		{0, str("[h]:mm:ss"), false},
		{0, str(`0.0 "days"`), false},
		{0, str("[$-409]mm:ss"), false},
	}
	for _, tt := range tests {
		if got := isDateFormat(tt.id, tt.custom); got != tt.want {
			t.Errorf("isDateFormat(%d, %v): got %v, want %v", tt.id, tt.custom, got, tt.want)
		}
	}
}

func TestOpen_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exams.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	raw := "1.04:06:07"
	tat := 1686.1166666666667
	w := parquet.NewGenericWriter[model.ExamRow](f)
	if _, err := w.Write([]model.ExamRow{
		{Provider: "Smith", RawDuration: &raw, TATMinutes: &tat, RVU: 1.5},
		{Provider: "Lee", RVU: 2},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	f.Close()

	tbl, err := Open(context.Background(), Ref{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(tbl.Rows))
	}
	idx := map[string]int{}
	for i, h := range tbl.Headers {
		idx[h] = i
	}
	row := tbl.Rows[0]
	if row[idx[model.FieldRawDuration]] != raw || row[idx[model.FieldRVU]] != "1.5" || row[idx[model.FieldProvider]] != "Smith" {
		t.Errorf("unexpected row: %v", row)
	}
	if tbl.Rows[1][idx[model.FieldTATMinutes]] != "" {
		t.Errorf("nil tat should be empty, got %q", tbl.Rows[1][idx[model.FieldTATMinutes]])
	}
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exams.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE exams (author TEXT, tat TEXT, rvu REAL, points INTEGER)`,
		`INSERT INTO exams VALUES ('smith', '2:30:00', 1.25, 3)`,
		`INSERT INTO exams VALUES ('lee', NULL, NULL, 4)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	db.Close()

	tbl, err := Open(context.Background(), Ref{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if strings.Join(tbl.Headers, ",") != "author,tat,rvu,points" {
		t.Errorf("headers: %v", tbl.Headers)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows: got %d", len(tbl.Rows))
	}
	if got := strings.Join(tbl.Rows[0], ","); got != "smith,2:30:00,1.25,3" {
		t.Errorf("row 0: got %q", got)
	}
	if got := strings.Join(tbl.Rows[1], ","); got != "lee,,,4" {
		t.Errorf("row 1: got %q", got)
	}

	tbl, err = Open(context.Background(), Ref{Path: path, Query: "SELECT author FROM exams WHERE points > 3"})
	if err != nil {
		t.Fatalf("Open with query: %v", err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][0] != "lee" {
		t.Errorf("query rows: %v", tbl.Rows)
	}
}

func TestCache(t *testing.T) {
	path := writeFile(t, "exams.csv", "author,tat\nsmith,2:30:00\n")
	c := NewCache(zerolog.Nop())
	ctx := context.Background()

	a, err := c.Open(ctx, Ref{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, err := c.Open(ctx, Ref{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a != b {
		t.Error("expected the cached table on second open")
	}
	if sha, _ := normalize.FileHash(path); a.SHA256 != sha {
		t.Errorf("SHA256: got %q, want %q", a.SHA256, sha)
	}
	if c.Hits != 1 || c.Misses != 1 || c.Len() != 1 {
		t.Errorf("hits=%d misses=%d len=%d", c.Hits, c.Misses, c.Len())
	}

	// Same content at another path shares the entry.
	other := writeFile(t, "copy.csv", "author,tat\nsmith,2:30:00\n")
	if _, err := c.Open(ctx, Ref{Path: other}); err != nil {
		t.Fatalf("Open copy: %v", err)
	}
	if c.Len() != 1 || c.Hits != 2 {
		t.Errorf("identical content should hit: hits=%d len=%d", c.Hits, c.Len())
	}

	// Changed content is a new identity.
	os.WriteFile(path, []byte("author,tat\nlee,an hour\n"), 0644)
	if _, err := c.Open(ctx, Ref{Path: path}); err != nil {
		t.Fatalf("Open changed: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("changed content should miss, len=%d", c.Len())
	}

	if _, err := c.Open(ctx, Ref{Path: filepath.Join(t.TempDir(), "gone.csv")}); err == nil {
		t.Error("expected error for missing file")
	}
}
