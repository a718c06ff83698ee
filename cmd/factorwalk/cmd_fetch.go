package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sectorlab/factorwalk/internal/api/famafrench"
	"github.com/sectorlab/factorwalk/internal/api/stooq"
	"github.com/sectorlab/factorwalk/internal/config"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download sector ETF prices and factor data to the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context())
		},
	}
}

func runFetch(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setLogLevel(cfg.LogLevel)

	start, err := time.ParseInLocation("2006-01-02", cfg.StartDate, time.UTC)
	if err != nil {
		return fmt.Errorf("parsing start date: %w", err)
	}
	end := time.Now().UTC()
	if cfg.EndDate != "" {
		end, err = time.ParseInLocation("2006-01-02", cfg.EndDate, time.UTC)
		if err != nil {
			return fmt.Errorf("parsing end date: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	prices := stooq.NewClient(stooq.ClientOptions{RequestTimeout: timeout})
	for _, symbol := range cfg.Symbols {
		frame, err := prices.GetDailyCloses(ctx, symbol, start, end)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", symbol, err)
		}
		path := filepath.Join(cfg.DataDir, symbol+".csv")
		if err := frame.SaveCSV(path); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Info().Str("symbol", symbol).Int("rows", frame.Len()).Str("file", path).Msg("Saved prices")
	}

	factors := famafrench.NewClient(famafrench.ClientOptions{RequestTimeout: timeout})
	frame, err := factors.GetMonthlyFactors(ctx)
	if err != nil {
		return fmt.Errorf("fetching factors: %w", err)
	}
	path := filepath.Join(cfg.DataDir, "factors.csv")
	if err := frame.SaveCSV(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Info().Int("rows", frame.Len()).Str("file", path).Msg("Saved factors")

	return nil
}
