package timeseries

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoadCSVFromReader(t *testing.T) {
	data := `date,close,volume
2020-01-02,100.5,1200
2020-01-03,101.25,900
`
	frame, err := LoadCSVFromReader(strings.NewReader(data), nil)
	if err != nil {
		t.Fatalf("LoadCSVFromReader() error = %v", err)
	}
	if frame.Len() != 2 {
		t.Fatalf("got %d rows, want 2", frame.Len())
	}
	if !frame.Date(0).Equal(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", frame.Date(0))
	}
	v, err := frame.Value(1, "close")
	if err != nil || v != 101.25 {
		t.Errorf("close = %v, err = %v", v, err)
	}
}

func TestLoadCSVSelectedColumns(t *testing.T) {
	data := `Date,Open,Close
2020-01-02,99,100.5
`
	frame, err := LoadCSVFromReader(strings.NewReader(data), &CSVOptions{
		DateColumn: "Date",
		Columns:    []string{"Close"},
	})
	if err != nil {
		t.Fatalf("LoadCSVFromReader() error = %v", err)
	}
	if cols := frame.Columns(); len(cols) != 1 || cols[0] != "Close" {
		t.Errorf("columns = %v", cols)
	}
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		opts *CSVOptions
	}{
		{"missing date column", "x,y\n1,2\n", nil},
		{"bad date", "date,v\nnot-a-date,1\n", nil},
		{"bad number", "date,v\n2020-01-02,abc\n", nil},
		{"missing requested column", "date,v\n2020-01-02,1\n", &CSVOptions{Columns: []string{"w"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCSVFromReader(strings.NewReader(tt.data), tt.opts); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	f := New("close")
	if err := f.Append(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), 100.5); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := f.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	loaded, err := LoadCSVFromReader(&buf, nil)
	if err != nil {
		t.Fatalf("LoadCSVFromReader() error = %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("got %d rows, want 1", loaded.Len())
	}
	v, _ := loaded.Value(0, "close")
	if v != 100.5 {
		t.Errorf("close = %v, want 100.5", v)
	}
	if !loaded.Date(0).Equal(f.Date(0)) {
		t.Errorf("date = %v, want %v", loaded.Date(0), f.Date(0))
	}
}
