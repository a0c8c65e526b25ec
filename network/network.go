// Package network assembles convolutional feature extractors for
// time-series models. It is the collaborator estimators delegate layer
// stacking to; compiling and training the resulting stack is the
// caller's business.
package network

import (
	"fmt"

	"seriescnn/nn"
	"seriescnn/nn/layers"
)

// PaddingAuto selects "same" for short series and "valid" otherwise,
// with the switch at sameLengthLimit.
const PaddingAuto = "auto"

// Series shorter than this use "same" padding under the auto policy.
const sameLengthLimit = 60

// defaultFilterSizes is used when no filter sizes are configured.
var defaultFilterSizes = []int{6, 12}

// CNNNetwork builds a stack of convolution + average-pooling stages
// followed by a flatten layer. One stage is emitted per conv layer.
type CNNNetwork struct {
	KernelSize  int
	AvgPoolSize int
	NConvLayers int
	// FilterSizes holds the filter count per conv stage. Nil selects
	// the defaults; a list of the wrong length is truncated or
	// extended by repeating its last entry.
	FilterSizes []int
	// Activation names the function applied after each convolution.
	Activation string
	// Padding is "same", "valid" or "auto".
	Padding string
	// RandomState seeds layer weight initialisation. Each layer
	// derives its own seed from it, so no global generator is used.
	RandomState int64
}

// resolveFilterSizes normalizes the configured filter list to exactly
// NConvLayers entries.
func (n *CNNNetwork) resolveFilterSizes() []int {
	sizes := n.FilterSizes
	if len(sizes) == 0 {
		sizes = defaultFilterSizes
	}
	out := make([]int, n.NConvLayers)
	for i := range out {
		if i < len(sizes) {
			out[i] = sizes[i]
		} else {
			out[i] = sizes[len(sizes)-1]
		}
	}
	return out
}

// resolvePadding maps the configured policy to a concrete Conv1D
// padding for a given series length.
func (n *CNNNetwork) resolvePadding(seriesLen int) (string, error) {
	switch n.Padding {
	case PaddingAuto:
		if seriesLen < sameLengthLimit {
			return layers.PaddingSame, nil
		}
		return layers.PaddingValid, nil
	case layers.PaddingSame, layers.PaddingValid:
		return n.Padding, nil
	}
	return "", fmt.Errorf("unknown padding policy %q", n.Padding)
}

// BuildNetwork assembles the feature-extraction stack for one input
// instance of shape (seriesLength, nDimensions). It returns the layer
// chain and the flattened feature width the output head must accept.
func (n *CNNNetwork) BuildNetwork(inputShape [2]int) ([]nn.Module, int, error) {
	if n.NConvLayers <= 0 {
		return nil, 0, fmt.Errorf("number of conv layers must be positive, got %d", n.NConvLayers)
	}
	if inputShape[0] <= 0 || inputShape[1] <= 0 {
		return nil, 0, fmt.Errorf("invalid input shape %v", inputShape)
	}
	padding, err := n.resolvePadding(inputShape[0])
	if err != nil {
		return nil, 0, err
	}
	filterSizes := n.resolveFilterSizes()

	var stack []nn.Module
	shape := []int{inputShape[0], inputShape[1]}
	inChans := inputShape[1]
	for i, filters := range filterSizes {
		conv, err := layers.NewConv1D(
			fmt.Sprintf("conv_%d", i+1),
			inChans, filters, n.KernelSize,
			padding, true,
			n.RandomState+int64(i+1),
		)
		if err != nil {
			return nil, 0, err
		}
		act, err := layers.NewActivation(fmt.Sprintf("act_%d", i+1), n.Activation)
		if err != nil {
			return nil, 0, err
		}
		pool, err := layers.NewAvgPool1D(fmt.Sprintf("pool_%d", i+1), n.AvgPoolSize)
		if err != nil {
			return nil, 0, err
		}
		stack = append(stack, conv, act, pool)
		for _, layer := range []nn.Module{conv, act, pool} {
			if shape, err = layer.OutputShape(shape); err != nil {
				return nil, 0, err
			}
		}
		inChans = filters
	}

	flatten := layers.NewFlatten("flatten")
	stack = append(stack, flatten)
	shape, err = flatten.OutputShape(shape)
	if err != nil {
		return nil, 0, err
	}
	return stack, shape[0], nil
}
