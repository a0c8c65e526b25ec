package layers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"seriescnn/nn"
	"seriescnn/tensor"
)

// Dense is a fully-connected layer over 1-D input.
// Input  [in]
// Output [out]
type Dense struct {
	name    string
	in, out int
	useBias bool

	W *mat.Dense // out × in
	b []float64

	gradW *mat.Dense
	gradB []float64

	lastInput []float64
}

// NewDense creates a seeded fully-connected layer with Glorot-uniform
// weights and zero bias.
func NewDense(name string, in, out int, useBias bool, seed int64) (*Dense, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("Dense %s: dimensions must be positive, got %d→%d", name, in, out)
	}
	w := make([]float64, out*in)
	glorotUniform(w, in, out, seed)
	return &Dense{
		name:    name,
		in:      in,
		out:     out,
		useBias: useBias,
		W:       mat.NewDense(out, in, w),
		b:       make([]float64, out),
		gradW:   mat.NewDense(out, in, nil),
		gradB:   make([]float64, out),
	}, nil
}

func (d *Dense) Name() string { return d.name }

func (d *Dense) OutputShape(in []int) ([]int, error) {
	if len(in) != 1 || in[0] != d.in {
		return nil, fmt.Errorf("Dense %s: expected input shape [%d], got %v", d.name, d.in, in)
	}
	return []int{d.out}, nil
}

func (d *Dense) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if _, err := d.OutputShape(x.Shape); err != nil {
		return nil, err
	}
	d.lastInput = x.Data

	var y mat.VecDense
	y.MulVec(d.W, mat.NewVecDense(d.in, x.Data))
	out := tensor.New(d.out)
	for i := 0; i < d.out; i++ {
		out.Data[i] = y.AtVec(i)
		if d.useBias {
			out.Data[i] += d.b[i]
		}
	}
	return out, nil
}

func (d *Dense) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if d.lastInput == nil {
		return nil, fmt.Errorf("Dense %s: Backward before Forward", d.name)
	}
	if len(grad.Shape) != 1 || grad.Shape[0] != d.out {
		return nil, fmt.Errorf("Dense %s: gradient shape %v, want [%d]", d.name, grad.Shape, d.out)
	}

	// dW += g·xᵀ, db += g
	gw := d.gradW.RawMatrix().Data
	for i := 0; i < d.out; i++ {
		g := grad.Data[i]
		if d.useBias {
			d.gradB[i] += g
		}
		row := gw[i*d.in : (i+1)*d.in]
		for j := 0; j < d.in; j++ {
			row[j] += g * d.lastInput[j]
		}
	}

	// dX = Wᵀ·g
	var dx mat.VecDense
	dx.MulVec(d.W.T(), mat.NewVecDense(d.out, grad.Data))
	out := tensor.New(d.in)
	for j := 0; j < d.in; j++ {
		out.Data[j] = dx.AtVec(j)
	}
	return out, nil
}

func (d *Dense) Params() []nn.Param {
	params := []nn.Param{{
		Name:  "W",
		Shape: []int{d.out, d.in},
		Data:  d.W.RawMatrix().Data,
		Grad:  d.gradW.RawMatrix().Data,
	}}
	if d.useBias {
		params = append(params, nn.Param{
			Name:  "B",
			Shape: []int{d.out},
			Data:  d.b,
			Grad:  d.gradB,
		})
	}
	return params
}

func (d *Dense) ZeroGrad() {
	gw := d.gradW.RawMatrix().Data
	for i := range gw {
		gw[i] = 0
	}
	for i := range d.gradB {
		d.gradB[i] = 0
	}
}
