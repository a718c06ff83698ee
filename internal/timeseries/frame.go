// Package timeseries provides the ordered, date-indexed table that every
// other package operates on. All numeric coercion happens at ingestion;
// downstream code only ever sees float64 columns.
package timeseries

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnsorted is returned when rows are not in ascending date order.
	ErrUnsorted = errors.New("rows not sorted ascending by date")
	// ErrDuplicateDate is returned when two rows share a timestamp.
	ErrDuplicateDate = errors.New("duplicate date")
)

// Frame is an ordered table of rows keyed by date. Rows are stored
// row-major; Slice returns views that share the backing arrays.
type Frame struct {
	columns []string
	dates   []time.Time
	data    [][]float64
}

// New creates an empty frame with the given column names.
func New(columns ...string) *Frame {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Frame{columns: cols}
}

// Append adds a row. The number of values must match the column count.
func (f *Frame) Append(date time.Time, values ...float64) error {
	if len(values) != len(f.columns) {
		return fmt.Errorf("appending row with %d values to frame with %d columns", len(values), len(f.columns))
	}
	row := make([]float64, len(values))
	copy(row, values)
	f.dates = append(f.dates, date)
	f.data = append(f.data, row)
	return nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.dates)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	cols := make([]string, len(f.columns))
	copy(cols, f.columns)
	return cols
}

// Date returns the timestamp of row i.
func (f *Frame) Date(i int) time.Time {
	return f.dates[i]
}

// ColumnIndex returns the position of a named column.
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Value returns the value at row i of the named column.
func (f *Frame) Value(i int, name string) (float64, error) {
	idx, ok := f.ColumnIndex(name)
	if !ok {
		return 0, fmt.Errorf("unknown column %q", name)
	}
	return f.data[i][idx], nil
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]float64, error) {
	idx, ok := f.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]float64, len(f.data))
	for i, row := range f.data {
		out[i] = row[idx]
	}
	return out, nil
}

// Validate checks that dates are strictly ascending with no duplicates.
// Callers are expected to run this once before generating splits.
func (f *Frame) Validate() error {
	for i := 1; i < len(f.dates); i++ {
		switch {
		case f.dates[i].Equal(f.dates[i-1]):
			return fmt.Errorf("row %d (%s): %w", i, f.dates[i].Format("2006-01-02"), ErrDuplicateDate)
		case f.dates[i].Before(f.dates[i-1]):
			return fmt.Errorf("row %d (%s): %w", i, f.dates[i].Format("2006-01-02"), ErrUnsorted)
		}
	}
	return nil
}

// Slice returns a view of rows [start, end). The view shares backing
// arrays with the parent frame and must not outlive it.
func (f *Frame) Slice(start, end int) (*Frame, error) {
	if start < 0 || end > len(f.dates) || start > end {
		return nil, fmt.Errorf("slice [%d, %d) out of range for %d rows", start, end, len(f.dates))
	}
	return &Frame{
		columns: f.columns,
		dates:   f.dates[start:end],
		data:    f.data[start:end],
	}, nil
}

// Matrix extracts the named columns over rows [start, end) as a row-major
// matrix. Values are copied.
func (f *Frame) Matrix(cols []string, start, end int) ([][]float64, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, ok := f.ColumnIndex(c)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", c)
		}
		idx[i] = j
	}
	if start < 0 || end > len(f.data) || start > end {
		return nil, fmt.Errorf("matrix rows [%d, %d) out of range for %d rows", start, end, len(f.data))
	}
	out := make([][]float64, 0, end-start)
	for i := start; i < end; i++ {
		row := make([]float64, len(idx))
		for k, j := range idx {
			row[k] = f.data[i][j]
		}
		out = append(out, row)
	}
	return out, nil
}

// Vector extracts a single named column over rows [start, end).
func (f *Frame) Vector(col string, start, end int) ([]float64, error) {
	m, err := f.Matrix([]string{col}, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = row[0]
	}
	return out, nil
}

// Join inner-joins two frames on exactly equal dates. Column names must
// not collide. Both inputs must already be validated.
func (f *Frame) Join(other *Frame) (*Frame, error) {
	for _, c := range other.columns {
		if _, ok := f.ColumnIndex(c); ok {
			return nil, fmt.Errorf("join column collision on %q", c)
		}
	}
	joined := New(append(f.Columns(), other.Columns()...)...)

	i, j := 0, 0
	for i < len(f.dates) && j < len(other.dates) {
		switch {
		case f.dates[i].Before(other.dates[j]):
			i++
		case f.dates[i].After(other.dates[j]):
			j++
		default:
			row := append(append([]float64{}, f.data[i]...), other.data[j]...)
			if err := joined.Append(f.dates[i], row...); err != nil {
				return nil, err
			}
			i++
			j++
		}
	}
	return joined, nil
}

// WithColumn returns a new frame with an extra column appended. The values
// slice must have one entry per row.
func (f *Frame) WithColumn(name string, values []float64) (*Frame, error) {
	if _, ok := f.ColumnIndex(name); ok {
		return nil, fmt.Errorf("column %q already exists", name)
	}
	if len(values) != len(f.dates) {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(f.dates))
	}
	out := New(append(f.Columns(), name)...)
	for i := range f.dates {
		row := append(append([]float64{}, f.data[i]...), values[i])
		if err := out.Append(f.dates[i], row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Select returns a new frame containing only the named columns, in the
// given order.
func (f *Frame) Select(cols ...string) (*Frame, error) {
	m, err := f.Matrix(cols, 0, f.Len())
	if err != nil {
		return nil, err
	}
	out := New(cols...)
	for i := range m {
		if err := out.Append(f.dates[i], m[i]...); err != nil {
			return nil, err
		}
	}
	return out, nil
}
