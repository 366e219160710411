package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gyeh/rvustats/internal/config"
	"github.com/gyeh/rvustats/internal/exitcode"
	"github.com/gyeh/rvustats/internal/logging"
)

// DSNEnv is read (after loading .env) when --dsn is not given.
const DSNEnv = "RVUSTATS_DB_URL"

var (
	cfg        config.Config
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "rvustats",
	Short: "Radiology turnaround and productivity statistics",
	Long: "Loads exam records from CSV, spreadsheet, parquet, SQLite, or Postgres, " +
		"normalizes turnaround times, and reports turnaround and RVU statistics.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log := logging.Setup(cfg.LogFormat, logLevel)

		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("could not read .env")
		}
		if cfg.DSN == "" {
			cfg.DSN = os.Getenv(DSNEnv)
		}

		if configPath != "" {
			if err := cfg.LoadFromFile(configPath); err != nil {
				log.Error().Err(err).Str("config", configPath).Msg("config file invalid")
				os.Exit(exitcode.UsageError)
			}
			return
		}
		if err := cfg.ApplyDefaults(); err != nil {
			log.Error().Err(err).Msg("config invalid")
			os.Exit(exitcode.UsageError)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", "", "Postgres connection string (or set "+DSNEnv+", also read from .env)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&configPath, "config", "", "YAML file with column aliases, duration synonyms, and defaults")
}
