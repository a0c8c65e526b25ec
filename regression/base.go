// Package regression provides neural estimators for time-series
// regression behind a conventional Fit/Predict interface.
package regression

import (
	"errors"

	"seriescnn/tensor"
)

// ErrNotFitted is returned when Predict is called before a successful
// Fit.
var ErrNotFitted = errors.New("estimator is not fitted")

// Fitter is a trainable estimator. X is a panel of shape
// (instances, dimensions, seriesLength); y holds one target per
// instance.
type Fitter interface {
	Fit(X *tensor.Tensor, y []float64) error
}

// Predictor maps a panel to one prediction per instance.
type Predictor interface {
	Predict(X *tensor.Tensor) ([]float64, error)
}

// Estimator can both learn and predict.
type Estimator interface {
	Fitter
	Predictor
}

// BaseEstimator tracks the unfit → fit transition shared by all
// estimators in this package. Fitting again is allowed and replaces
// whatever the previous fit produced.
type BaseEstimator struct {
	fitted bool
}

// IsFitted reports whether a successful Fit has completed.
func (e *BaseEstimator) IsFitted() bool { return e.fitted }

func (e *BaseEstimator) setFitted() { e.fitted = true }
