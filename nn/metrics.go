package nn

import (
	"fmt"
	"math"
)

// Metric scores a vector of predictions against targets.
type Metric func(yTrue, yPred []float64) float64

// Accuracy is the exact-match fraction. For continuous regression
// output it is usually ~0, but it is kept as the default metric to
// match the estimator's historical contract.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) float64 {
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue))
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred []float64) float64 {
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / float64(len(yTrue))
}

// RMSE is the root mean squared error.
func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

// R2 is the coefficient of determination.
func R2(yTrue, yPred []float64) float64 {
	m := 0.0
	for _, v := range yTrue {
		m += v
	}
	m /= float64(len(yTrue))
	ssTot, ssRes := 0.0, 0.0
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

var metricRegistry = map[string]Metric{
	"accuracy": Accuracy,
	"mse":      MSE,
	"mae":      MAE,
	"rmse":     RMSE,
	"r2":       R2,
}

// RegisterMetric adds or replaces a named metric.
func RegisterMetric(name string, m Metric) {
	metricRegistry[name] = m
}

// DeregisterMetric removes a named metric. Used by tests to exercise
// the dependency probe.
func DeregisterMetric(name string) {
	delete(metricRegistry, name)
}

// LookupMetric resolves a metric by name.
func LookupMetric(name string) (Metric, error) {
	m, ok := metricRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", name)
	}
	return m, nil
}
