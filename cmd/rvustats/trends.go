package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/rvustats/internal/aggregate"
	"github.com/gyeh/rvustats/internal/exitcode"
	"github.com/gyeh/rvustats/internal/logging"
	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/report"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Workload over time, and provider by modality breakdown",
	Long: "Groups records by month, weekday, or hour of the finalized time " +
		"(falling back to created time, then the report date), or cross-tabulates " +
		"providers against modalities or months.",
	RunE: runTrends,
}

var (
	trendsSel selectionFlags
	trendsBy  string
)

func init() {
	addRecordFlags(trendsCmd)
	trendsSel.register(trendsCmd)
	trendsCmd.Flags().StringVar(&trendsBy, "by", "month", "Bucket by: month, weekday, hour, modality (provider × modality), or provider-month")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, logLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		failConfig(log, err)
	}
	sel, err := trendsSel.selection()
	if err != nil {
		log.Error().Err(err).Msg("invalid filter")
		os.Exit(exitcode.UsageError)
	}
	if _, err := trendBucket(trendsBy); err != nil {
		fail(log, err, "invalid --by")
	}

	records, err := loadRecords(ctx, log)
	if err != nil {
		fail(log, err, "load failed")
	}
	records, err = sel.Apply(records)
	if err != nil {
		fail(log, err, "no records selected")
	}

	if err := writeTrends(cmd.OutOrStdout(), records, trendsBy, meanPolicy()); err != nil {
		fail(log, err, "trends failed")
	}
	return nil
}

type bucketFunc func([]model.Record, aggregate.MeanPolicy) []aggregate.Group

// trendBucket returns the time bucketing for by. Cross-tab views have no
// bucket function and return nil.
func trendBucket(by string) (bucketFunc, error) {
	switch by {
	case "month":
		return aggregate.ByMonth, nil
	case "weekday":
		return aggregate.ByWeekday, nil
	case "hour":
		return aggregate.ByHour, nil
	case "modality", "provider-month":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: --by %q; want month, weekday, hour, modality, or provider-month", errBadFlag, by)
}

func writeTrends(w io.Writer, records []model.Record, by string, p aggregate.MeanPolicy) error {
	bucket, err := trendBucket(by)
	if err != nil {
		return err
	}
	switch by {
	case "modality":
		report.Title(w, "Exams by provider and modality")
		return report.WriteCrossTab(w, "provider", aggregate.CrossTab(records, aggregate.ByProvider, aggregate.ByModality))
	case "provider-month":
		report.Title(w, "Exams by provider and month")
		return report.WriteCrossTab(w, "provider", aggregate.CrossTab(records, aggregate.ByProvider, aggregate.MonthKey()))
	}

	groups := bucket(records, p)
	if len(groups) == 0 {
		return fmt.Errorf("no records carry a timestamp: %w", report.ErrNoData)
	}
	report.Title(w, "By "+by)
	return report.WriteGroups(w, by, groups)
}
