// Package dataset assembles per-sector modeling tables: monthly sector
// returns in excess of the risk-free rate, joined with the factor series
// by month. Grouping by sector is always an explicit key on the output,
// never state carried inside a table.
package dataset

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/sectorlab/factorwalk/internal/timeseries"
)

// DefaultSectors maps the SPDR sector ETF symbols to sector names.
var DefaultSectors = map[string]string{
	"XLB": "Materials",
	"XLE": "Energy",
	"XLF": "Financials",
	"XLI": "Industrials",
	"XLK": "Technology",
	"XLP": "Consumer Staples",
	"XLU": "Utilities",
	"XLV": "Health Care",
	"XLY": "Consumer Discretionary",
}

// FeatureColumns are the regressors of the three-factor model.
var FeatureColumns = []string{"mkt_excess", "smb", "hml"}

// TargetColumn is the dependent variable of the per-sector regressions.
const TargetColumn = "excess_ret"

// SectorData is one sector's modeling table.
type SectorData struct {
	Symbol string
	Frame  *timeseries.Frame
}

// Build turns daily close frames into one modeling frame per sector:
// monthly-resampled returns, excess of the monthly risk-free rate, joined
// with the factor frame on month. Output is ordered by symbol so runs are
// deterministic regardless of map iteration.
func Build(prices map[string]*timeseries.Frame, factors *timeseries.Frame) ([]SectorData, error) {
	if err := factors.Validate(); err != nil {
		return nil, fmt.Errorf("factor frame: %w", err)
	}

	symbols := make([]string, 0, len(prices))
	for symbol := range prices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	logger := log.With().Str("component", "dataset").Logger()

	var out []SectorData
	for _, symbol := range symbols {
		frame, err := buildSector(symbol, prices[symbol], factors)
		if err != nil {
			return nil, fmt.Errorf("sector %s: %w", symbol, err)
		}
		logger.Debug().Str("symbol", symbol).Int("rows", frame.Len()).Msg("Built sector table")
		out = append(out, SectorData{Symbol: symbol, Frame: frame})
	}
	return out, nil
}

func buildSector(symbol string, daily, factors *timeseries.Frame) (*timeseries.Frame, error) {
	if err := daily.Validate(); err != nil {
		return nil, fmt.Errorf("daily prices: %w", err)
	}

	monthly := daily.ResampleMonthly()
	returns, err := monthly.Returns("close", "ret")
	if err != nil {
		return nil, err
	}

	joined, err := returns.Join(factors)
	if err != nil {
		return nil, err
	}
	if joined.Len() == 0 {
		return nil, fmt.Errorf("no overlapping months between prices and factors")
	}

	ret, err := joined.Column("ret")
	if err != nil {
		return nil, err
	}
	rf, err := joined.Column("rf")
	if err != nil {
		return nil, err
	}
	excess := make([]float64, len(ret))
	for i := range ret {
		excess[i] = ret[i] - rf[i]
	}

	withExcess, err := joined.WithColumn(TargetColumn, excess)
	if err != nil {
		return nil, err
	}
	frame, err := withExcess.Select(append([]string{TargetColumn}, FeatureColumns...)...)
	if err != nil {
		return nil, err
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return frame, nil
}
