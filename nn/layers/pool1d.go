package layers

import (
	"fmt"

	"seriescnn/tensor"
)

// AvgPool1D averages non-overlapping windows along the time axis,
// per channel. A trailing partial window is dropped.
// Input  [L, C]
// Output [L/window, C]
type AvgPool1D struct {
	name   string
	window int

	inShape []int
}

func NewAvgPool1D(name string, window int) (*AvgPool1D, error) {
	if window <= 0 {
		return nil, fmt.Errorf("AvgPool1D %s: window must be positive, got %d", name, window)
	}
	return &AvgPool1D{name: name, window: window}, nil
}

func (p *AvgPool1D) Name() string { return p.name }

func (p *AvgPool1D) OutputShape(in []int) ([]int, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("AvgPool1D %s: expected 2-D input shape [L, C], got %v", p.name, in)
	}
	outL := in[0] / p.window
	if outL == 0 {
		return nil, fmt.Errorf("AvgPool1D %s: series length %d shorter than pool window %d", p.name, in[0], p.window)
	}
	return []int{outL, in[1]}, nil
}

func (p *AvgPool1D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	outShape, err := p.OutputShape(x.Shape)
	if err != nil {
		return nil, err
	}
	m, ch := x.Shape[0], x.Shape[1]
	outL := outShape[0]
	p.inShape = []int{m, ch}

	out := tensor.New(outL, ch)
	for i := 0; i < outL; i++ {
		for c := 0; c < ch; c++ {
			sum := 0.0
			for j := 0; j < p.window; j++ {
				sum += x.Data[(i*p.window+j)*ch+c]
			}
			out.Data[i*ch+c] = sum / float64(p.window)
		}
	}
	return out, nil
}

// Backward scatters each pooled gradient evenly across its window.
// Positions in a dropped partial window receive zero gradient.
func (p *AvgPool1D) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if p.inShape == nil {
		return nil, fmt.Errorf("AvgPool1D %s: Backward before Forward", p.name)
	}
	m, ch := p.inShape[0], p.inShape[1]
	outL := m / p.window
	if len(grad.Shape) != 2 || grad.Shape[0] != outL || grad.Shape[1] != ch {
		return nil, fmt.Errorf("AvgPool1D %s: gradient shape %v, want [%d %d]", p.name, grad.Shape, outL, ch)
	}

	dX := tensor.New(m, ch)
	for i := 0; i < outL; i++ {
		for c := 0; c < ch; c++ {
			g := grad.Data[i*ch+c] / float64(p.window)
			for j := 0; j < p.window; j++ {
				dX.Data[(i*p.window+j)*ch+c] = g
			}
		}
	}
	return dX, nil
}
