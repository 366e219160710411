package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/rvustats/internal/exitcode"
	"github.com/gyeh/rvustats/internal/export"
	"github.com/gyeh/rvustats/internal/logging"
	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write filtered records to CSV, XLSX, or parquet",
	RunE:  runExport,
}

var (
	exportSel selectionFlags
	exportOut string
)

func init() {
	addRecordFlags(exportCmd)
	exportSel.register(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output path; format from extension: .csv, .xlsx, or .parquet (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, logLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		failConfig(log, err)
	}
	sel, err := exportSel.selection()
	if err != nil {
		log.Error().Err(err).Msg("invalid filter")
		os.Exit(exitcode.UsageError)
	}

	records, err := loadRecords(ctx, log)
	if err != nil {
		fail(log, err, "load failed")
	}
	if err := exportSelection(records, sel, exportOut, log); err != nil {
		fail(log, err, "export failed")
	}
	return nil
}

// exportSelection filters records and writes them to path.
func exportSelection(records []model.Record, sel report.Selection, path string, log zerolog.Logger) error {
	records, err := sel.Apply(records)
	if err != nil {
		return err
	}
	return export.WriteFile(path, records, log)
}
