package layers

import (
	"fmt"

	"seriescnn/nn"
	"seriescnn/tensor"
)

// Padding policies for Conv1D.
const (
	PaddingSame  = "same"
	PaddingValid = "valid"
)

// Conv1D is a 1-D convolution over channels-last input.
// Input  [L, C_in]
// Output [L, F] for "same" padding, [L-k+1, F] for "valid".
type Conv1D struct {
	name    string
	inChans int
	filters int
	kernel  int
	padding string
	useBias bool

	W *tensor.Tensor // [filters, kernel, inChans]
	B *tensor.Tensor // [filters]

	gradW *tensor.Tensor
	gradB *tensor.Tensor

	lastInput *tensor.Tensor
}

// NewConv1D creates a seeded 1-D convolution layer. Weights use
// Glorot-uniform initialisation; the bias starts at zero.
func NewConv1D(name string, inChans, filters, kernel int, padding string, useBias bool, seed int64) (*Conv1D, error) {
	if inChans <= 0 || filters <= 0 || kernel <= 0 {
		return nil, fmt.Errorf("Conv1D %s: channels, filters and kernel must be positive, got %d/%d/%d", name, inChans, filters, kernel)
	}
	if padding != PaddingSame && padding != PaddingValid {
		return nil, fmt.Errorf("Conv1D %s: padding must be %q or %q, got %q", name, PaddingSame, PaddingValid, padding)
	}
	c := &Conv1D{
		name:    name,
		inChans: inChans,
		filters: filters,
		kernel:  kernel,
		padding: padding,
		useBias: useBias,
		W:       tensor.New(filters, kernel, inChans),
		B:       tensor.New(filters),
		gradW:   tensor.New(filters, kernel, inChans),
		gradB:   tensor.New(filters),
	}
	glorotUniform(c.W.Data, kernel*inChans, kernel*filters, seed)
	return c, nil
}

func (c *Conv1D) Name() string { return c.name }

// Padding returns the resolved padding policy.
func (c *Conv1D) Padding() string { return c.padding }

func (c *Conv1D) padLeft() int {
	if c.padding == PaddingSame {
		return (c.kernel - 1) / 2
	}
	return 0
}

func (c *Conv1D) outLen(m int) (int, error) {
	if c.padding == PaddingSame {
		return m, nil
	}
	out := m - c.kernel + 1
	if out <= 0 {
		return 0, fmt.Errorf("Conv1D %s: series length %d shorter than kernel %d under valid padding", c.name, m, c.kernel)
	}
	return out, nil
}

// OutputShape maps [L, C_in] to the convolved shape.
func (c *Conv1D) OutputShape(in []int) ([]int, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("Conv1D %s: expected 2-D input shape [L, C], got %v", c.name, in)
	}
	if in[1] != c.inChans {
		return nil, fmt.Errorf("Conv1D %s: expected %d input channels, got %d", c.name, c.inChans, in[1])
	}
	out, err := c.outLen(in[0])
	if err != nil {
		return nil, err
	}
	return []int{out, c.filters}, nil
}

func (c *Conv1D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if _, err := c.OutputShape(x.Shape); err != nil {
		return nil, err
	}
	m, d := x.Shape[0], x.Shape[1]
	outM, _ := c.outLen(m)
	pad := c.padLeft()
	c.lastInput = x

	out := tensor.New(outM, c.filters)
	for t := 0; t < outM; t++ {
		for f := 0; f < c.filters; f++ {
			sum := 0.0
			if c.useBias {
				sum = c.B.Data[f]
			}
			for j := 0; j < c.kernel; j++ {
				p := t + j - pad
				if p < 0 || p >= m {
					continue
				}
				for ch := 0; ch < d; ch++ {
					sum += x.Data[p*d+ch] * c.W.Data[(f*c.kernel+j)*d+ch]
				}
			}
			out.Data[t*c.filters+f] = sum
		}
	}
	return out, nil
}

func (c *Conv1D) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if c.lastInput == nil {
		return nil, fmt.Errorf("Conv1D %s: Backward before Forward", c.name)
	}
	x := c.lastInput
	m, d := x.Shape[0], x.Shape[1]
	outM, _ := c.outLen(m)
	if len(grad.Shape) != 2 || grad.Shape[0] != outM || grad.Shape[1] != c.filters {
		return nil, fmt.Errorf("Conv1D %s: gradient shape %v, want [%d %d]", c.name, grad.Shape, outM, c.filters)
	}
	pad := c.padLeft()

	dX := tensor.New(m, d)
	for t := 0; t < outM; t++ {
		for f := 0; f < c.filters; f++ {
			g := grad.Data[t*c.filters+f]
			if g == 0 {
				continue
			}
			if c.useBias {
				c.gradB.Data[f] += g
			}
			for j := 0; j < c.kernel; j++ {
				p := t + j - pad
				if p < 0 || p >= m {
					continue
				}
				for ch := 0; ch < d; ch++ {
					c.gradW.Data[(f*c.kernel+j)*d+ch] += g * x.Data[p*d+ch]
					dX.Data[p*d+ch] += g * c.W.Data[(f*c.kernel+j)*d+ch]
				}
			}
		}
	}
	return dX, nil
}

func (c *Conv1D) Params() []nn.Param {
	params := []nn.Param{{
		Name:  "W",
		Shape: c.W.Shape,
		Data:  c.W.Data,
		Grad:  c.gradW.Data,
	}}
	if c.useBias {
		params = append(params, nn.Param{
			Name:  "B",
			Shape: c.B.Shape,
			Data:  c.B.Data,
			Grad:  c.gradB.Data,
		})
	}
	return params
}

func (c *Conv1D) ZeroGrad() {
	for i := range c.gradW.Data {
		c.gradW.Data[i] = 0
	}
	for i := range c.gradB.Data {
		c.gradB.Data[i] = 0
	}
}
