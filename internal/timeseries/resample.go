package timeseries

import (
	"fmt"
	"time"
)

// MonthStart truncates a timestamp to the first day of its calendar month
// in UTC. Resampled frames and factor frames both use this as the join key.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ResampleMonthly collapses a daily frame to one row per calendar month,
// keeping the last observation of each month. Row dates are normalized to
// the first of the month so monthly frames from different sources join.
func (f *Frame) ResampleMonthly() *Frame {
	out := New(f.columns...)
	for i := range f.dates {
		last := i == len(f.dates)-1 ||
			MonthStart(f.dates[i+1]) != MonthStart(f.dates[i])
		if last {
			// Append copies the row, so sharing f.data[i] here is fine.
			_ = out.Append(MonthStart(f.dates[i]), f.data[i]...)
		}
	}
	return out
}

// Returns computes simple period-over-period returns of the named column:
// v[i]/v[i-1] - 1. The result has one fewer row than the input and keeps
// the date of the later observation.
func (f *Frame) Returns(col, as string) (*Frame, error) {
	values, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	out := New(as)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			return nil, fmt.Errorf("zero value at row %d, cannot compute return", i-1)
		}
		if err := out.Append(f.dates[i], values[i]/values[i-1]-1); err != nil {
			return nil, err
		}
	}
	return out, nil
}
