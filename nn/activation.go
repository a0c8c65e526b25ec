package nn

import (
	"fmt"
	"math"
)

// Activation is an elementwise function with its derivative. Deriv
// receives both the pre-activation input x and the activation output y
// so cheap forms like sigmoid' = y(1-y) can be used.
type Activation struct {
	F     func(x float64) float64
	Deriv func(x, y float64) float64
}

var activationRegistry = map[string]Activation{
	"linear": {
		F:     func(x float64) float64 { return x },
		Deriv: func(x, y float64) float64 { return 1 },
	},
	"relu": {
		F: func(x float64) float64 {
			if x > 0 {
				return x
			}
			return 0
		},
		Deriv: func(x, y float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		},
	},
	"sigmoid": {
		F:     func(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) },
		Deriv: func(x, y float64) float64 { return y * (1 - y) },
	},
	"tanh": {
		F:     math.Tanh,
		Deriv: func(x, y float64) float64 { return 1 - y*y },
	},
}

// RegisterActivation adds or replaces a named activation.
func RegisterActivation(name string, a Activation) {
	activationRegistry[name] = a
}

// DeregisterActivation removes a named activation. Used by tests to
// exercise the dependency probe.
func DeregisterActivation(name string) {
	delete(activationRegistry, name)
}

// LookupActivation resolves an activation by name.
func LookupActivation(name string) (Activation, error) {
	a, ok := activationRegistry[name]
	if !ok {
		return Activation{}, fmt.Errorf("unknown activation %q", name)
	}
	return a, nil
}
