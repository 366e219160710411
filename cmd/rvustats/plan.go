package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/rvustats/internal/logging"
	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
	"github.com/gyeh/rvustats/internal/report"
	"github.com/gyeh/rvustats/internal/schema"
	"github.com/gyeh/rvustats/internal/source"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run: check required columns and mapping stats (no writes)",
	RunE:  runPlan,
}

func init() {
	addSourceFlags(planCmd)
	_ = planCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, logLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		failConfig(log, err)
	}

	ref := source.Ref{Path: cfg.FilePath, Sheet: cfg.Sheet, Query: cfg.Query}
	if err := writePlan(ctx, cmd.OutOrStdout(), ref, cfg.SchemaOptions(), log); err != nil {
		fail(log, err, "plan failed")
	}
	return nil
}

// writePlan reads ref, prints its column mapping and load statistics, and
// returns a SchemaError when required columns are missing.
func writePlan(ctx context.Context, out io.Writer, ref source.Ref, opts schema.Options, log zerolog.Logger) error {
	sha, err := normalize.FileHash(ref.Path)
	if err != nil {
		return &source.SourceError{Ref: ref, Err: err}
	}
	stat, err := os.Stat(ref.Path)
	if err != nil {
		return &source.SourceError{Ref: ref, Err: err}
	}
	tbl, err := source.Open(ctx, ref)
	if err != nil {
		return err
	}

	profile := opts.Profile
	if profile == "" {
		profile = model.DefaultProfile
	}
	mapping := schema.Resolve(tbl.Headers, opts.Aliases)

	fmt.Fprintln(out, "=== rvustats plan ===")
	fmt.Fprintf(out, "File:       %s\n", ref.Path)
	fmt.Fprintf(out, "SHA-256:    %s\n", sha)
	fmt.Fprintf(out, "Size:       %s\n", humanize.Bytes(uint64(stat.Size())))
	fmt.Fprintf(out, "Total rows: %s\n", humanize.Comma(int64(len(tbl.Rows))))
	fmt.Fprintf(out, "Profile:    %s\n", profile)
	if sheets, err := source.Sheets(ref.Path); err == nil {
		fmt.Fprintf(out, "Sheets:     %s\n", strings.Join(sheets, ", "))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Column mapping:")
	for _, f := range model.AllFields {
		if idx := mapping.Index(f.Name); idx >= 0 {
			fmt.Fprintf(out, "  %-24s <- %q\n", f.Name, tbl.Headers[idx])
		} else {
			fmt.Fprintf(out, "  %-24s    (not found)\n", f.Name)
		}
	}
	fmt.Fprintln(out)

	_, sum, err := schema.Map(tbl, opts, log)
	if err != nil {
		return err
	}
	sum.SourceSHA256 = sha

	if err := report.WriteLoadSummary(out, sum); err != nil {
		return err
	}
	if len(opts.Synonyms) > 0 {
		phrases := make([]string, 0, len(opts.Synonyms))
		for p, m := range opts.Synonyms {
			phrases = append(phrases, fmt.Sprintf("%q=%s", p, normalize.FormatNumber(m)))
		}
		slices.Sort(phrases)
		fmt.Fprintf(out, "\nDuration synonyms: %s\n", strings.Join(phrases, ", "))
	}
	fmt.Fprintln(out, "Schema validation: OK")
	return nil
}
