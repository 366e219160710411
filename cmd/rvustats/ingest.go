package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gyeh/rvustats/internal/db"
	"github.com/gyeh/rvustats/internal/exitcode"
	"github.com/gyeh/rvustats/internal/ingest"
	"github.com/gyeh/rvustats/internal/logging"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load exam records from a file into Postgres",
	RunE:  runIngest,
}

func init() {
	addSourceFlags(ingestCmd)
	f := ingestCmd.Flags()
	f.BoolVar(&cfg.Force, "force", false, "Re-load even if the file's SHA-256 was already loaded")
	f.BoolVar(&cfg.KeepFailed, "keep-failed", false, "Keep rows copied by a failed batch")
	_ = ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, logLevel)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		failConfig(log, err)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := ingest.Run(ctx, pool, log, &cfg)
	if err != nil {
		pool.Close()
		fail(log, err, "ingest failed")
	}

	if summary.IngestBatchID == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Already loaded (source file %d); use --force to re-load\n", summary.SourceFileID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ingest complete: %s rows loaded, %s parse errors, batch %s (%.1fs)\n",
		humanize.Comma(summary.RowsStaged), humanize.Comma(summary.ParseErrors),
		summary.IngestBatchID, summary.DurationTotal.Seconds())
	return nil
}
