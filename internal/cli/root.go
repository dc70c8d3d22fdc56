// Package cli is the engine's command line: one-shot runs, the scheduled
// server and a few operator utilities.
package cli

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	dataDir string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "leadhunt",
	Short: "Lead ingestion engine",
	Long: `leadhunt pulls candidate leads from people search and job postings from
Greenhouse and Lever, cleans, enriches, filters and scores them, and stores
the qualified records in a local SQLite database.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		setupLogging("")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default is <data-dir>/config.yml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default LEADHUNT_DATA_DIR or app.data_dir)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// setupLogging installs the tint handler; level is the config's log_level.
func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if isDebug {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.RFC3339,
	})))
}
