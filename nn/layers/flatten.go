package layers

import (
	"fmt"

	"seriescnn/tensor"
)

// Flatten reshapes any input to 1-D; the gradient is reshaped back.
type Flatten struct {
	name    string
	inShape []int
}

func NewFlatten(name string) *Flatten { return &Flatten{name: name} }

func (f *Flatten) Name() string { return f.name }

func (f *Flatten) OutputShape(in []int) ([]int, error) {
	total := 1
	for _, d := range in {
		total *= d
	}
	return []int{total}, nil
}

func (f *Flatten) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	f.inShape = append([]int(nil), x.Shape...)
	out := tensor.New(len(x.Data))
	copy(out.Data, x.Data)
	return out, nil
}

func (f *Flatten) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if f.inShape == nil {
		return nil, fmt.Errorf("Flatten %s: Backward before Forward", f.name)
	}
	out := tensor.New(f.inShape...)
	if len(grad.Data) != len(out.Data) {
		return nil, fmt.Errorf("Flatten %s: gradient has %d values, want %d", f.name, len(grad.Data), len(out.Data))
	}
	copy(out.Data, grad.Data)
	return out, nil
}
