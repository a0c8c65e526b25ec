package nn

import (
	"seriescnn/tensor"
)

// Module defines a single layer/unit in the network.
type Module interface {
	// Name identifies the layer inside a model. Names must be unique
	// per model since parameter ids are derived from them.
	Name() string
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)
	// Backward takes the gradient of the loss with respect to the
	// module's output and returns the gradient with respect to its
	// input. Parameter gradients accumulate inside the module until
	// ZeroGrad is called.
	Backward(grad *tensor.Tensor) (*tensor.Tensor, error)
	// OutputShape maps an input shape to the shape this module emits.
	OutputShape(in []int) ([]int, error)
}

// Param is a named parameter block of a layer. Data and Grad alias the
// layer's own storage, so optimizer steps mutate the layer in place.
type Param struct {
	Name  string
	Shape []int
	Data  []float64
	Grad  []float64
}

// Trainable is implemented by modules holding learnable parameters.
type Trainable interface {
	Module
	Params() []Param
	ZeroGrad()
}
