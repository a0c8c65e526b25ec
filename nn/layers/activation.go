package layers

import (
	"fmt"

	"seriescnn/nn"
	"seriescnn/tensor"
)

// Activation applies a named elementwise function. The function is
// resolved from the framework registry when the layer is created.
type Activation struct {
	name string
	fn   string
	act  nn.Activation

	lastIn  *tensor.Tensor
	lastOut *tensor.Tensor
}

func NewActivation(name, fn string) (*Activation, error) {
	act, err := nn.LookupActivation(fn)
	if err != nil {
		return nil, fmt.Errorf("Activation %s: %w", name, err)
	}
	return &Activation{name: name, fn: fn, act: act}, nil
}

func (a *Activation) Name() string { return a.name }

// Fn returns the activation function name.
func (a *Activation) Fn() string { return a.fn }

func (a *Activation) OutputShape(in []int) ([]int, error) {
	return append([]int(nil), in...), nil
}

func (a *Activation) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		out.Data[i] = a.act.F(v)
	}
	a.lastIn = x
	a.lastOut = out
	return out, nil
}

func (a *Activation) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if a.lastIn == nil {
		return nil, fmt.Errorf("Activation %s: Backward before Forward", a.name)
	}
	if !tensor.SameShape(grad, a.lastIn) {
		return nil, fmt.Errorf("Activation %s: gradient shape %v, want %v", a.name, grad.Shape, a.lastIn.Shape)
	}
	out := tensor.New(grad.Shape...)
	for i, g := range grad.Data {
		out.Data[i] = g * a.act.Deriv(a.lastIn.Data[i], a.lastOut.Data[i])
	}
	return out, nil
}
