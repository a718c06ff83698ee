// Package backtest runs walk-forward model evaluation over a split plan
// and aggregates the out-of-sample errors.
package backtest

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sectorlab/factorwalk/internal/model"
	"github.com/sectorlab/factorwalk/internal/split"
	"github.com/sectorlab/factorwalk/internal/timeseries"
)

// FitErrorPolicy decides what happens when a model fails to fit one split.
// The zero value aborts the whole evaluation; skipping must be opted into.
type FitErrorPolicy int

const (
	// Abort stops the evaluation at the first failed split.
	Abort FitErrorPolicy = iota
	// Skip drops the failed split's records and continues.
	Skip
)

// FitError reports a model fit failure for one split.
type FitError struct {
	Slice string
	Err   error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("model fit failed for split %s: %v", e.Slice, e.Err)
}

func (e *FitError) Unwrap() error {
	return e.Err
}

// Options configures an evaluation run.
type Options struct {
	Policy  FitErrorPolicy
	Workers int // splits evaluated concurrently; <= 1 means sequential
}

// Harness evaluates a fitter over a walk-forward split plan.
type Harness struct {
	fitter      model.Fitter
	featureCols []string
	targetCol   string
	opts        Options
	logger      zerolog.Logger
}

// NewHarness creates a harness for the given fitter and column selection.
func NewHarness(fitter model.Fitter, featureCols []string, targetCol string, opts Options) *Harness {
	return &Harness{
		fitter:      fitter,
		featureCols: featureCols,
		targetCol:   targetCol,
		opts:        opts,
		logger:      log.With().Str("component", "backtest_harness").Logger(),
	}
}

// Evaluate fits and predicts each split in plan order and returns one
// record per assessment row, in generation order. The frame is validated
// eagerly and only ever read; splits are independent, so Workers > 1 fans
// them out over a bounded pool without changing the output.
func (h *Harness) Evaluate(frame *timeseries.Frame, plan []split.Split) ([]model.Record, error) {
	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("misaligned input: %w", err)
	}

	type outcome struct {
		records []model.Record
		err     *FitError
	}
	outcomes := make([]outcome, len(plan))

	run := func(i int) {
		records, err := h.evaluateSplit(frame, plan[i])
		if err != nil {
			outcomes[i] = outcome{err: &FitError{Slice: plan[i].ID, Err: err}}
			return
		}
		outcomes[i] = outcome{records: records}
	}

	if h.opts.Workers > 1 {
		var wg sync.WaitGroup
		sem := make(chan struct{}, h.opts.Workers)
		for i := range plan {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				run(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range plan {
			run(i)
			if outcomes[i].err != nil && h.opts.Policy == Abort {
				return nil, outcomes[i].err
			}
		}
	}

	var results []model.Record
	for _, o := range outcomes {
		if o.err != nil {
			if h.opts.Policy == Abort {
				return nil, o.err
			}
			h.logger.Warn().Str("slice", o.err.Slice).Err(o.err.Err).Msg("Skipping failed split")
			continue
		}
		results = append(results, o.records...)
	}
	return results, nil
}

func (h *Harness) evaluateSplit(frame *timeseries.Frame, s split.Split) ([]model.Record, error) {
	analysisX, err := frame.Matrix(h.featureCols, s.Analysis.Start, s.Analysis.End)
	if err != nil {
		return nil, err
	}
	analysisY, err := frame.Vector(h.targetCol, s.Analysis.Start, s.Analysis.End)
	if err != nil {
		return nil, err
	}
	if distinctRows(analysisX) < 2 {
		return nil, fmt.Errorf("degenerate analysis window: fewer than 2 distinct feature rows")
	}

	fitted, err := h.fitter.Fit(analysisX, analysisY)
	if err != nil {
		return nil, err
	}

	assessX, err := frame.Matrix(h.featureCols, s.Assessment.Start, s.Assessment.End)
	if err != nil {
		return nil, err
	}
	assessY, err := frame.Vector(h.targetCol, s.Assessment.Start, s.Assessment.End)
	if err != nil {
		return nil, err
	}
	predicted, err := fitted.Predict(assessX)
	if err != nil {
		return nil, err
	}
	if len(predicted) != len(assessY) {
		return nil, fmt.Errorf("predictor returned %d values for %d assessment rows", len(predicted), len(assessY))
	}

	records := make([]model.Record, len(predicted))
	for i := range predicted {
		records[i] = model.Record{
			Date:      frame.Date(s.Assessment.Start + i),
			Slice:     s.ID,
			Predicted: predicted[i],
			Actual:    assessY[i],
		}
	}
	return records, nil
}

func distinctRows(rows [][]float64) int {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := fmt.Sprint(row)
		seen[key] = struct{}{}
		if len(seen) >= 2 {
			return len(seen)
		}
	}
	return len(seen)
}
