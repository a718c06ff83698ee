// Package regress implements the regression engines used as fit/predict
// collaborators by the walk-forward harness: ordinary least squares and a
// small bagged-tree forest. Both are plain float64 math; the pipeline has
// no linear-algebra dependency to lean on.
package regress

import (
	"errors"
	"fmt"
	"math"

	"github.com/sectorlab/factorwalk/internal/model"
)

// ErrSingular is returned when the normal equations have no unique
// solution (rank-deficient design matrix).
var ErrSingular = errors.New("singular design matrix")

// OLS fits a multiple linear regression with intercept by solving the
// normal equations.
type OLS struct{}

// LinearModel is a fitted OLS regression. Coefficients[0] is the
// intercept, followed by one slope per feature column in input order.
type LinearModel struct {
	Coefficients []float64
}

// Fit solves (X'X)b = X'y for b, with a leading intercept column.
func (OLS) Fit(features [][]float64, target []float64) (model.Predictor, error) {
	n := len(features)
	if n == 0 || n != len(target) {
		return nil, fmt.Errorf("fit needs matching rows, got %d features and %d targets", n, len(target))
	}
	p := len(features[0]) + 1 // intercept
	if n < p {
		return nil, fmt.Errorf("%w: %d rows for %d coefficients", ErrSingular, n, p)
	}

	xtx := make([][]float64, p)
	for i := range xtx {
		xtx[i] = make([]float64, p)
	}
	xty := make([]float64, p)

	for r := 0; r < n; r++ {
		if len(features[r]) != p-1 {
			return nil, fmt.Errorf("row %d has %d features, want %d", r, len(features[r]), p-1)
		}
		row := make([]float64, p)
		row[0] = 1
		copy(row[1:], features[r])
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * target[r]
		}
	}

	coef, err := solve(xtx, xty)
	if err != nil {
		return nil, err
	}
	return &LinearModel{Coefficients: coef}, nil
}

// Predict returns Xb for each feature row.
func (m *LinearModel) Predict(features [][]float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i, row := range features {
		if len(row) != len(m.Coefficients)-1 {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), len(m.Coefficients)-1)
		}
		v := m.Coefficients[0]
		for j, x := range row {
			v += m.Coefficients[j+1] * x
		}
		out[i] = v
	}
	return out, nil
}

// solve runs Gaussian elimination with partial pivoting on a copy of the
// inputs.
func solve(a [][]float64, b []float64) ([]float64, error) {
	p := len(a)
	m := make([][]float64, p)
	for i := range a {
		m[i] = append(append([]float64{}, a[i]...), b[i])
	}

	for col := 0; col < p; col++ {
		pivot := col
		for r := col + 1; r < p; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, ErrSingular
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := 0; r < p; r++ {
			if r == col {
				continue
			}
			factor := m[r][col] / m[col][col]
			for c := col; c <= p; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	x := make([]float64, p)
	for i := 0; i < p; i++ {
		x[i] = m[i][p] / m[i][i]
	}
	return x, nil
}
