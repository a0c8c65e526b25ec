package nn

import (
	"fmt"
	"math"
)

// Optimizer updates one named parameter block in place. The id keys
// per-parameter optimizer state; scale normalizes accumulated batch
// gradients (typically 1/batchSize).
type Optimizer interface {
	Name() string
	Step(id string, data, grad []float64, scale float64)
}

// SGD is plain stochastic gradient descent.
type SGD struct {
	LR float64
}

// NewSGD returns an SGD optimizer with the given learning rate.
func NewSGD(lr float64) *SGD { return &SGD{LR: lr} }

func (o *SGD) Name() string { return "sgd" }

func (o *SGD) Step(id string, data, grad []float64, scale float64) {
	for i := range data {
		data[i] -= o.LR * scale * grad[i]
	}
}

// Adam is the adaptive moment optimizer. Moment estimates are kept per
// parameter id so one Adam instance can drive a whole model.
type Adam struct {
	LR      float64
	Beta1   float64
	Beta2   float64
	Epsilon float64

	state map[string]*adamState
}

type adamState struct {
	m, v []float64
	t    int
}

// NewAdam returns an Adam optimizer with the usual moment defaults.
func NewAdam(lr float64) *Adam {
	return &Adam{LR: lr, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

func (o *Adam) Name() string { return "adam" }

func (o *Adam) Step(id string, data, grad []float64, scale float64) {
	if o.state == nil {
		o.state = make(map[string]*adamState)
	}
	st, ok := o.state[id]
	if !ok {
		st = &adamState{m: make([]float64, len(data)), v: make([]float64, len(data))}
		o.state[id] = st
	}
	st.t++
	c1 := 1 - math.Pow(o.Beta1, float64(st.t))
	c2 := 1 - math.Pow(o.Beta2, float64(st.t))
	for i := range data {
		g := scale * grad[i]
		st.m[i] = o.Beta1*st.m[i] + (1-o.Beta1)*g
		st.v[i] = o.Beta2*st.v[i] + (1-o.Beta2)*g*g
		mHat := st.m[i] / c1
		vHat := st.v[i] / c2
		data[i] -= o.LR * mHat / (math.Sqrt(vHat) + o.Epsilon)
	}
}

var optimizerRegistry = map[string]func() Optimizer{
	"sgd":  func() Optimizer { return NewSGD(0.01) },
	"adam": func() Optimizer { return NewAdam(0.01) },
}

// RegisterOptimizer adds or replaces a named optimizer factory.
func RegisterOptimizer(name string, factory func() Optimizer) {
	optimizerRegistry[name] = factory
}

// DeregisterOptimizer removes a named optimizer. Used by tests to
// exercise the dependency probe.
func DeregisterOptimizer(name string) {
	delete(optimizerRegistry, name)
}

// LookupOptimizer resolves an optimizer by name with its default
// configuration.
func LookupOptimizer(name string) (Optimizer, error) {
	f, ok := optimizerRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown optimizer %q", name)
	}
	return f(), nil
}
