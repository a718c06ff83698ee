// Package split generates rolling-origin (walk-forward) index plans over an
// ordered series. Splits are index ranges into the caller's data, never
// copies; training data never includes observations after the held-out
// window.
package split

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when the requested window sizes cannot
// produce even one split.
var ErrInsufficientData = errors.New("insufficient data for requested windows")

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Split pairs a training (analysis) window with the held-out (assessment)
// window that immediately follows it.
type Split struct {
	ID         string
	Analysis   Range
	Assessment Range
}

// Plan generates the ordered sequence of walk-forward splits for a series
// of nRows observations.
//
// With cumulative=false the analysis window keeps a constant width of
// initialSize and the origin slides forward one observation per split.
// With cumulative=true the analysis window starts at row 0 and grows by
// one observation per split. Either way the assessment window is the
// assessSize observations immediately following the analysis window, and
// generation stops once it would run past the series.
//
// Note that with assessSize > 1 the assessment windows of consecutive
// splits overlap. That is standard walk-forward semantics: each split
// still evaluates strictly out-of-sample.
func Plan(nRows, initialSize, assessSize int, cumulative bool) ([]Split, error) {
	if nRows < 1 {
		return nil, fmt.Errorf("nRows must be >= 1, got %d", nRows)
	}
	if initialSize < 1 {
		return nil, fmt.Errorf("initialSize must be >= 1, got %d", initialSize)
	}
	if assessSize < 1 {
		return nil, fmt.Errorf("assessSize must be >= 1, got %d", assessSize)
	}
	if initialSize+assessSize > nRows {
		return nil, fmt.Errorf("%w: initialSize %d + assessSize %d > %d rows",
			ErrInsufficientData, initialSize, assessSize, nRows)
	}

	var splits []Split
	for k := 1; ; k++ {
		var analysis Range
		if cumulative {
			analysis = Range{Start: 0, End: initialSize + k - 1}
		} else {
			analysis = Range{Start: k - 1, End: k - 1 + initialSize}
		}
		assessment := Range{Start: analysis.End, End: analysis.End + assessSize}
		if assessment.End > nRows {
			break
		}
		splits = append(splits, Split{
			ID:         fmt.Sprintf("Slice%02d", k),
			Analysis:   analysis,
			Assessment: assessment,
		})
	}
	return splits, nil
}
