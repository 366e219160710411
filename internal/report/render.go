package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/gyeh/rvustats/internal/aggregate"
	"github.com/gyeh/rvustats/internal/model"
)

// NA is printed for unknown values.
const NA = "n/a"

// FormatMinutes renders a duration as minutes with one decimal place.
func FormatMinutes(d model.Duration) string {
	if !d.Known {
		return NA
	}
	return humanize.CommafWithDigits(d.Minutes, 1) + " min"
}

// FormatMeasure renders a derived value with two decimal places.
func FormatMeasure(m model.Measure) string {
	if !m.Known {
		return NA
	}
	return humanize.CommafWithDigits(m.Value, 2)
}

func formatTotal(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

// WriteKPIs prints the overall KPI block.
func WriteKPIs(w io.Writer, s aggregate.Summary) error {
	if s.NoData {
		_, err := fmt.Fprintln(w, "No data.")
		return err
	}
	table := newTable(w, []string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"Total exams", humanize.Comma(int64(s.Count))},
		{"Known TAT", humanize.Comma(int64(s.KnownTAT))},
		{"Mean TAT (" + s.Policy.String() + ")", FormatMinutes(s.MeanTAT)},
		{"Total RVU", formatTotal(s.RVU)},
		{"RVU per minute", FormatMeasure(s.RVUPerMinute)},
		{"Total points", formatTotal(s.Points)},
		{"Total procedures", formatTotal(s.Procedures)},
	})
	table.Render()
	return nil
}

// WriteGroups prints one row per group. keyHeader labels the key column.
func WriteGroups(w io.Writer, keyHeader string, groups []aggregate.Group) error {
	table := newTable(w, []string{
		keyHeader, "Exams", "Mean TAT", "RVU", "RVU/min",
		"Points", "Procedures", "Points/half-day", "Procedures/half-day",
	})
	for _, g := range groups {
		table.Append([]string{
			g.Key,
			humanize.Comma(int64(g.Count)),
			FormatMinutes(g.MeanTAT),
			formatTotal(g.RVU),
			FormatMeasure(g.RVUPerMinute),
			formatTotal(g.Points),
			formatTotal(g.Procedures),
			FormatMeasure(g.MeanPointsPerHalfDay),
			FormatMeasure(g.MeanProceduresPerHalfDay),
		})
	}
	table.Render()
	return nil
}

// WriteCrossTab prints exam counts as a rows × columns matrix. Row and
// column order follow first occurrence.
func WriteCrossTab(w io.Writer, rowHeader string, cells []aggregate.Cell) error {
	var rows, cols []string
	seenRow := make(map[string]bool)
	seenCol := make(map[string]bool)
	counts := make(map[[2]string]int)
	for _, c := range cells {
		if !seenRow[c.Row] {
			seenRow[c.Row] = true
			rows = append(rows, c.Row)
		}
		if !seenCol[c.Col] {
			seenCol[c.Col] = true
			cols = append(cols, c.Col)
		}
		counts[[2]string{c.Row, c.Col}] += c.Count
	}

	table := newTable(w, append([]string{rowHeader}, cols...))
	for _, r := range rows {
		line := make([]string, 0, len(cols)+1)
		line = append(line, r)
		for _, c := range cols {
			line = append(line, humanize.Comma(int64(counts[[2]string{r, c}])))
		}
		table.Append(line)
	}
	table.Render()
	return nil
}

// WriteLoadSummary prints what a mapping pass read and dropped.
func WriteLoadSummary(w io.Writer, s *model.LoadSummary) error {
	table := newTable(w, []string{"Source", "Rows read", "Mapped", "Dropped", "Parse errors", "Unknown TAT"})
	table.Append([]string{
		s.Source,
		humanize.Comma(s.RowsRead),
		humanize.Comma(s.RowsMapped),
		humanize.Comma(s.RowsDropped),
		humanize.Comma(s.ParseErrors),
		humanize.Comma(s.UnknownDuration),
	})
	table.Render()
	return nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	alignments := make([]int, len(header))
	for i := range alignments {
		alignments[i] = tablewriter.ALIGN_RIGHT
	}
	alignments[0] = tablewriter.ALIGN_LEFT
	table.SetColumnAlignment(alignments)
	return table
}

// Title prints an underlined section heading.
func Title(w io.Writer, s string) {
	fmt.Fprintf(w, "\n%s\n%s\n", s, strings.Repeat("=", len(s)))
}
