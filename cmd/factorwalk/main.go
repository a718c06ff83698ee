package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "factorwalk"
	version = "v0.3.0"
)

var configPath string

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Walk-forward factor regressions over sector ETF returns",
		Version: version,
		Long: `factorwalk fetches sector ETF prices and the Fama-French factor
dataset, joins them into monthly per-sector tables, and evaluates factor
regressions out-of-sample with rolling-origin (walk-forward) splits.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file overriding the environment")

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newBacktestCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("Unknown log level, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
