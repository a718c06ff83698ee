package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sectorlab/factorwalk/internal/backtest"
	"github.com/sectorlab/factorwalk/internal/config"
	"github.com/sectorlab/factorwalk/internal/dataset"
	"github.com/sectorlab/factorwalk/internal/model"
	"github.com/sectorlab/factorwalk/internal/regress"
	"github.com/sectorlab/factorwalk/internal/split"
	"github.com/sectorlab/factorwalk/internal/store"
	"github.com/sectorlab/factorwalk/internal/timeseries"
)

func newBacktestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backtest",
		Short: "Run walk-forward factor regressions per sector",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest()
		},
	}
}

func runBacktest() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setLogLevel(cfg.LogLevel)

	sectors, err := loadSectors(cfg)
	if err != nil {
		return err
	}

	fitter := newFitter(cfg)
	opts := backtest.Options{Workers: cfg.Workers}
	if cfg.OnFitError == "skip" {
		opts.Policy = backtest.Skip
	}
	harness := backtest.NewHarness(fitter, dataset.FeatureColumns, dataset.TargetColumn, opts)

	var sink *store.Store
	runID := ""
	if cfg.DatabaseURL != "" {
		sink, err = store.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("opening results store: %w", err)
		}
		defer sink.Close()
		runID, err = sink.CreateRun(store.RunConfig{
			Model:       cfg.Model,
			InitialSize: cfg.InitialSize,
			AssessSize:  cfg.AssessSize,
			Cumulative:  cfg.Cumulative,
		})
		if err != nil {
			return err
		}
		log.Info().Str("run_id", runID).Msg("Persisting results")
	}

	fmt.Printf("===== WALK-FORWARD BACKTEST (%s, initial=%d assess=%d cumulative=%v) =====\n",
		cfg.Model, cfg.InitialSize, cfg.AssessSize, cfg.Cumulative)

	for _, sector := range sectors {
		plan, err := split.Plan(sector.Frame.Len(), cfg.InitialSize, cfg.AssessSize, cfg.Cumulative)
		if err != nil {
			return fmt.Errorf("sector %s: %w", sector.Symbol, err)
		}
		records, err := harness.Evaluate(sector.Frame, plan)
		if err != nil {
			return fmt.Errorf("sector %s: %w", sector.Symbol, err)
		}
		rmse, err := backtest.AggregateError(records, backtest.RMSE)
		if err != nil {
			return fmt.Errorf("sector %s: %w", sector.Symbol, err)
		}
		mae, _ := backtest.AggregateError(records, backtest.MAE)

		name := dataset.DefaultSectors[sector.Symbol]
		if name == "" {
			name = sector.Symbol
		}
		fmt.Printf("\n%s (%s): %d splits, %d predictions\n", sector.Symbol, name, len(plan), len(records))
		fmt.Printf("  out-of-sample RMSE: %.6f  MAE: %.6f\n", rmse, mae)

		if err := printCoefficients(sector.Frame); err != nil {
			log.Warn().Str("symbol", sector.Symbol).Err(err).Msg("Full-sample fit failed")
		}

		if sink != nil {
			if err := sink.SavePredictions(runID, sector.Symbol, records); err != nil {
				return fmt.Errorf("saving %s predictions: %w", sector.Symbol, err)
			}
		}
	}
	return nil
}

func loadSectors(cfg *config.Config) ([]dataset.SectorData, error) {
	factors, err := timeseries.LoadCSV(filepath.Join(cfg.DataDir, "factors.csv"), nil)
	if err != nil {
		return nil, fmt.Errorf("loading factors (run `%s fetch` first): %w", appName, err)
	}

	prices := make(map[string]*timeseries.Frame, len(cfg.Symbols))
	for _, symbol := range cfg.Symbols {
		frame, err := timeseries.LoadCSV(filepath.Join(cfg.DataDir, symbol+".csv"), nil)
		if err != nil {
			return nil, fmt.Errorf("loading %s prices (run `%s fetch` first): %w", symbol, appName, err)
		}
		prices[symbol] = frame
	}
	return dataset.Build(prices, factors)
}

func newFitter(cfg *config.Config) model.Fitter {
	if cfg.Model == "forest" {
		return regress.Forest{
			Trees:    cfg.ForestTrees,
			MaxDepth: cfg.ForestDepth,
			Seed:     cfg.Seed,
		}
	}
	return regress.OLS{}
}

// printCoefficients fits OLS on the whole sample and prints the factor
// loadings, the tabular stand-in for the original coefficient charts.
func printCoefficients(frame *timeseries.Frame) error {
	features, err := frame.Matrix(dataset.FeatureColumns, 0, frame.Len())
	if err != nil {
		return err
	}
	target, err := frame.Vector(dataset.TargetColumn, 0, frame.Len())
	if err != nil {
		return err
	}
	fitted, err := regress.OLS{}.Fit(features, target)
	if err != nil {
		return err
	}
	linear, ok := fitted.(*regress.LinearModel)
	if !ok {
		return fmt.Errorf("unexpected model type %T", fitted)
	}

	parts := []string{fmt.Sprintf("alpha=%.5f", linear.Coefficients[0])}
	for i, col := range dataset.FeatureColumns {
		parts = append(parts, fmt.Sprintf("%s=%.4f", col, linear.Coefficients[i+1]))
	}
	fmt.Printf("  full-sample loadings: %s\n", strings.Join(parts, "  "))
	return nil
}
