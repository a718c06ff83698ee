// Package stooq fetches daily price history from the stooq.com CSV
// endpoint, which serves US ETF data without an API key.
package stooq

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/sectorlab/factorwalk/internal/platform/http"
	"github.com/sectorlab/factorwalk/internal/timeseries"
)

const defaultBaseURL = "https://stooq.com/q/d/l/"

// Client is the stooq price data client.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	BaseURL         string // override for testing
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new stooq client.
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "stooq_client").Logger(),
	}
}

// GetDailyCloses fetches the daily close series for a symbol between start
// and end, sorted ascending. The returned frame has a single "close"
// column.
func (c *Client) GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) (*timeseries.Frame, error) {
	url := fmt.Sprintf("%s?s=%s&d1=%s&d2=%s&i=d",
		c.baseURL,
		stooqSymbol(symbol),
		start.Format("20060102"),
		end.Format("20060102"),
	)
	c.logger.Debug().Str("symbol", symbol).Str("url", url).Msg("Fetching daily prices")

	body, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	if strings.Contains(string(body), "No data") {
		return nil, fmt.Errorf("no data returned for %s", symbol)
	}

	frame, err := timeseries.LoadCSVFromReader(bytes.NewReader(body), &timeseries.CSVOptions{
		DateColumn: "Date",
		DateFormat: "2006-01-02",
		Columns:    []string{"Close"},
	})
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", symbol, err)
	}

	closes, err := frame.Column("Close")
	if err != nil {
		return nil, err
	}
	out := timeseries.New("close")
	idx := make([]int, frame.Len())
	for i := range idx {
		idx[i] = i
	}
	// Validate requires ascending dates; the endpoint usually serves
	// oldest-first but does not document it.
	sort.SliceStable(idx, func(a, b int) bool { return frame.Date(idx[a]).Before(frame.Date(idx[b])) })
	for _, i := range idx {
		if err := out.Append(frame.Date(i), closes[i]); err != nil {
			return nil, err
		}
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s price data: %w", symbol, err)
	}

	c.logger.Debug().Str("symbol", symbol).Int("rows", out.Len()).Msg("Fetched daily prices")
	return out, nil
}

// stooqSymbol maps a US ticker to stooq's lowercase .us convention.
func stooqSymbol(symbol string) string {
	s := strings.ToLower(symbol)
	if !strings.Contains(s, ".") {
		s += ".us"
	}
	return s
}
