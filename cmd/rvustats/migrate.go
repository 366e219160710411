package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/rvustats/internal/db"
	"github.com/gyeh/rvustats/internal/exitcode"
	"github.com/gyeh/rvustats/internal/logging"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the ingest and rvu schemas",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "List migrations and when each was applied, without applying")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, logLevel)
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or " + DSNEnv + " is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if !migrateStatus {
		if err := db.ApplyMigrations(ctx, pool, log); err != nil {
			log.Error().Err(err).Msg("migration failed")
			os.Exit(exitcode.DBConnError)
		}
	}

	status, err := db.MigrationStatus(ctx, pool)
	if err != nil {
		log.Error().Err(err).Msg("read migration status")
		os.Exit(exitcode.DBConnError)
	}
	printMigrations(cmd.OutOrStdout(), status)
	return nil
}

func printMigrations(w io.Writer, status []db.Migration) {
	for _, m := range status {
		applied := "pending"
		if m.AppliedAt != nil {
			applied = m.AppliedAt.UTC().Format("2006-01-02 15:04:05Z")
		}
		fmt.Fprintf(w, "%-28s %s\n", m.Name, applied)
	}
}
