package nn

import (
	"fmt"
	"math"
)

// Loss scores a batch of predictions and provides the per-sample
// gradient of the loss with respect to a scalar prediction.
type Loss interface {
	Name() string
	Eval(yTrue, yPred []float64) float64
	Grad(yTrue, yPred float64) float64
}

// MeanSquaredError is the default regression loss.
type MeanSquaredError struct{}

func (MeanSquaredError) Name() string { return "mean_squared_error" }

func (MeanSquaredError) Eval(yTrue, yPred []float64) float64 {
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue))
}

func (MeanSquaredError) Grad(yTrue, yPred float64) float64 {
	return 2 * (yPred - yTrue)
}

// MeanAbsoluteError is an L1 regression loss.
type MeanAbsoluteError struct{}

func (MeanAbsoluteError) Name() string { return "mean_absolute_error" }

func (MeanAbsoluteError) Eval(yTrue, yPred []float64) float64 {
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / float64(len(yTrue))
}

func (MeanAbsoluteError) Grad(yTrue, yPred float64) float64 {
	switch {
	case yPred > yTrue:
		return 1
	case yPred < yTrue:
		return -1
	}
	return 0
}

var lossRegistry = map[string]func() Loss{
	"mean_squared_error":  func() Loss { return MeanSquaredError{} },
	"mean_absolute_error": func() Loss { return MeanAbsoluteError{} },
}

// RegisterLoss adds or replaces a named loss factory.
func RegisterLoss(name string, factory func() Loss) {
	lossRegistry[name] = factory
}

// DeregisterLoss removes a named loss. Used by tests to exercise the
// dependency probe.
func DeregisterLoss(name string) {
	delete(lossRegistry, name)
}

// LookupLoss resolves a loss by name.
func LookupLoss(name string) (Loss, error) {
	f, ok := lossRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown loss %q", name)
	}
	return f(), nil
}
