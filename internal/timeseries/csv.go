package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn string   // column name holding the date (default "date")
	DateFormat string   // Go reference layout (default "2006-01-02")
	Columns    []string // numeric columns to load; empty means all non-date columns
}

// DefaultCSVOptions returns the options used for canonical data files.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn: "date",
		DateFormat: "2006-01-02",
	}
}

// LoadCSV loads a frame from a CSV file with a header row.
func LoadCSV(filename string, opts *CSVOptions) (*Frame, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a frame from CSV data with a header row. Dates
// are parsed in UTC and all selected columns are coerced to float64 here,
// so downstream code never re-parses.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Frame, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	dateCol := opts.DateColumn
	if dateCol == "" {
		dateCol = "date"
	}
	format := opts.DateFormat
	if format == "" {
		format = "2006-01-02"
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	dateIdx := -1
	colIdx := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if strings.EqualFold(h, dateCol) {
			dateIdx = i
			continue
		}
		colIdx[h] = i
	}
	if dateIdx == -1 {
		return nil, fmt.Errorf("date column %q not found in header %v", dateCol, header)
	}

	columns := opts.Columns
	if len(columns) == 0 {
		for i, h := range header {
			if i != dateIdx {
				columns = append(columns, strings.TrimSpace(h))
			}
		}
	}
	for _, c := range columns {
		if _, ok := colIdx[c]; !ok {
			return nil, fmt.Errorf("column %q not found in header %v", c, header)
		}
	}

	frame := New(columns...)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		line++

		date, err := time.ParseInLocation(format, strings.TrimSpace(record[dateIdx]), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing date: %w", line, err)
		}
		values := make([]float64, len(columns))
		for i, c := range columns {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[colIdx[c]]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parsing column %q: %w", line, c, err)
			}
			values[i] = v
		}
		if err := frame.Append(date, values...); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// WriteCSV writes the frame as CSV with a header row, dates first.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(append([]string{"date"}, f.columns...)); err != nil {
		return err
	}
	for i := range f.dates {
		record := make([]string, 0, len(f.columns)+1)
		record = append(record, f.dates[i].Format("2006-01-02"))
		for _, v := range f.data[i] {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the frame to a file.
func (f *Frame) SaveCSV(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return f.WriteCSV(file)
}
