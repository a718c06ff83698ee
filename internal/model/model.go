// Package model holds the shared types that connect the data pipeline,
// the regression engines, and the walk-forward harness.
package model

import "time"

// Predictor is a fitted model. Predict returns one value per feature row.
type Predictor interface {
	Predict(features [][]float64) ([]float64, error)
}

// Fitter trains a fresh Predictor on an analysis window. Implementations
// must be pure with respect to shared state so splits can run in parallel.
type Fitter interface {
	Fit(features [][]float64, target []float64) (Predictor, error)
}

// Record is one out-of-sample evaluation result: the prediction made for
// an assessment row and the value actually observed there.
type Record struct {
	Date      time.Time `json:"date"`
	Slice     string    `json:"slice"`
	Predicted float64   `json:"predicted"`
	Actual    float64   `json:"actual"`
}
