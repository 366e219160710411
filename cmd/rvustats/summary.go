package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/rvustats/internal/aggregate"
	"github.com/gyeh/rvustats/internal/exitcode"
	"github.com/gyeh/rvustats/internal/export"
	"github.com/gyeh/rvustats/internal/logging"
	"github.com/gyeh/rvustats/internal/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "KPIs and per-group turnaround and productivity",
	RunE:  runSummary,
}

var (
	summarySel  selectionFlags
	summaryBy   string
	summarySort string
	summaryTop  int
	summaryOut  string
)

func init() {
	addRecordFlags(summaryCmd)
	summarySel.register(summaryCmd)
	f := summaryCmd.Flags()
	f.StringVar(&summaryBy, "by", "provider", "Group by: provider, modality, section, or shift")
	f.StringVar(&summarySort, "sort", "", "Sort groups by metric, highest first (default rvu when --top is set)")
	f.IntVar(&summaryTop, "top", 0, "Keep only the top N groups")
	f.StringVar(&summaryOut, "out", "", "Also write the group table to this CSV file")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, logLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		failConfig(log, err)
	}
	sel, err := summarySel.selection()
	if err != nil {
		log.Error().Err(err).Msg("invalid filter")
		os.Exit(exitcode.UsageError)
	}
	key, err := aggregate.KeyByName(summaryBy)
	if err != nil {
		log.Error().Err(err).Msg("invalid --by")
		os.Exit(exitcode.UsageError)
	}
	metric := aggregate.MetricRVU
	if summarySort != "" {
		if metric, err = aggregate.ParseMetric(summarySort); err != nil {
			log.Error().Err(err).Msg("invalid --sort")
			os.Exit(exitcode.UsageError)
		}
	}

	records, err := loadRecords(ctx, log)
	if err != nil {
		fail(log, err, "load failed")
	}
	records, err = sel.Apply(records)
	if err != nil {
		fail(log, err, "no records selected")
	}

	policy := meanPolicy()
	groups := aggregate.GroupBy(records, key, policy)
	if summarySort != "" || summaryTop > 0 {
		groups = aggregate.TopN(groups, metric, summaryTop)
	}

	out := cmd.OutOrStdout()
	report.Title(out, "Overview")
	if err := report.WriteKPIs(out, aggregate.Summarize(records, policy)); err != nil {
		return err
	}
	report.Title(out, "By "+summaryBy)
	if err := report.WriteGroups(out, summaryBy, groups); err != nil {
		return err
	}

	if summaryOut != "" {
		f, err := os.Create(summaryOut)
		if err != nil {
			log.Error().Err(err).Msg("create output file")
			os.Exit(exitcode.InternalError)
		}
		defer f.Close()
		if err := export.WriteGroupsCSV(f, summaryBy, groups); err != nil {
			log.Error().Err(err).Msg("write group csv")
			os.Exit(exitcode.InternalError)
		}
		log.Info().Str("path", summaryOut).Int("groups", len(groups)).Msg("group table written")
	}
	return nil
}
