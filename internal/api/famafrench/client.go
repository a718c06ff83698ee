// Package famafrench downloads and parses the Fama-French research factor
// dataset published by the Ken French data library.
package famafrench

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/sectorlab/factorwalk/internal/platform/http"
	"github.com/sectorlab/factorwalk/internal/timeseries"
)

const factorsURL = "https://mba.tuck.dartmouth.edu/pages/faculty/ken.french/ftp/F-F_Research_Data_Factors_CSV.zip"

// Columns of the frame returned by GetMonthlyFactors, in order.
var Columns = []string{"mkt_excess", "smb", "hml", "rf"}

// Client fetches the three-factor dataset.
type Client struct {
	url        string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	URL             string // override for testing
	RequestTimeout  time.Duration
	MaxRetryTimeout time.Duration
}

// NewClient creates a new factor data client.
func NewClient(options ClientOptions) *Client {
	url := options.URL
	if url == "" {
		url = factorsURL
	}
	return &Client{
		url: url,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:         options.RequestTimeout,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "famafrench_client").Logger(),
	}
}

// GetMonthlyFactors downloads the factor zip and returns the monthly
// series as a frame with columns mkt_excess, smb, hml, rf in decimal
// units, dated at the first of each month.
func (c *Client) GetMonthlyFactors(ctx context.Context) (*timeseries.Frame, error) {
	c.logger.Debug().Str("url", c.url).Msg("Fetching factor dataset")

	body, err := c.httpClient.Get(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetching factor zip: %w", err)
	}

	csvData, err := extractCSV(body)
	if err != nil {
		return nil, err
	}
	frame, err := ParseMonthly(bytes.NewReader(csvData))
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("rows", frame.Len()).Msg("Parsed monthly factors")
	return frame, nil
}

// extractCSV pulls the first CSV entry out of the downloaded zip archive.
func extractCSV(data []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening factor zip: %w", err)
	}
	for _, file := range reader.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".csv") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", file.Name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("no CSV entry in factor zip")
}

// ParseMonthly parses the monthly section of the factor CSV. The file
// opens with several lines of prose, then a header row containing Mkt-RF,
// then YYYYMM rows in percent units. The monthly section ends at the
// first row whose date field is not a six-digit month.
func ParseMonthly(r io.Reader) (*timeseries.Frame, error) {
	scanner := bufio.NewScanner(r)

	inData := false
	frame := timeseries.New(Columns...)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !inData {
			if strings.Contains(line, "Mkt-RF") {
				inData = true
			}
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 5 {
			break
		}
		date, ok := parseMonth(strings.TrimSpace(fields[0]))
		if !ok {
			break
		}

		values := make([]float64, 4)
		missing := false
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %s: parsing %q: %w", fields[0], fields[i+1], err)
			}
			if v <= -99 { // library's missing-value marker
				missing = true
				break
			}
			values[i] = v / 100
		}
		if missing {
			continue
		}
		if err := frame.Append(date, values...); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if frame.Len() == 0 {
		return nil, fmt.Errorf("no monthly factor rows found")
	}
	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("factor data: %w", err)
	}
	return frame, nil
}

func parseMonth(s string) (time.Time, bool) {
	if len(s) != 6 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(s[4:])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}
