package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sectorlab/factorwalk/internal/model"
)

// Metric selects the per-group error measure used by AggregateError.
type Metric int

const (
	// RMSE is root-mean-squared error within a timestamp group.
	RMSE Metric = iota
	// MAE is mean absolute error within a timestamp group.
	MAE
)

// AggregateError groups records by assessment timestamp, computes the
// chosen error metric within each group, and averages across groups.
// Sliding windows with assessSize > 1 predict the same timestamp from
// several splits, which is why grouping comes first. A singleton group's
// RMSE degenerates to |predicted - actual|.
func AggregateError(records []model.Record, metric Metric) (float64, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("no records to aggregate")
	}

	groups := make(map[int64][]model.Record)
	for _, r := range records {
		key := r.Date.Unix()
		groups[key] = append(groups[key], r)
	}

	sum := 0.0
	for _, group := range groups {
		sum += groupError(group, metric)
	}
	return sum / float64(len(groups)), nil
}

// ErrorByDate returns the per-timestamp error series in date order, useful
// for inspecting where in the sample a model degrades.
func ErrorByDate(records []model.Record, metric Metric) ([]time.Time, []float64) {
	groups := make(map[int64][]model.Record)
	for _, r := range records {
		groups[r.Date.Unix()] = append(groups[r.Date.Unix()], r)
	}

	keys := make([]int64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	dates := make([]time.Time, len(keys))
	errs := make([]float64, len(keys))
	for i, k := range keys {
		dates[i] = time.Unix(k, 0).UTC()
		errs[i] = groupError(groups[k], metric)
	}
	return dates, errs
}

func groupError(group []model.Record, metric Metric) float64 {
	switch metric {
	case MAE:
		sum := 0.0
		for _, r := range group {
			sum += math.Abs(r.Predicted - r.Actual)
		}
		return sum / float64(len(group))
	default:
		sum := 0.0
		for _, r := range group {
			diff := r.Predicted - r.Actual
			sum += diff * diff
		}
		return math.Sqrt(sum / float64(len(group)))
	}
}
