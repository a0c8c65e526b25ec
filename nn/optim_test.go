package nn

import (
	"math"
	"testing"
)

func TestSGDStep(t *testing.T) {
	opt := NewSGD(0.1)
	data := []float64{1, 2}
	grad := []float64{10, -10}
	opt.Step("layer/W", data, grad, 0.5)

	// data -= lr * scale * grad
	if data[0] != 0.5 || data[1] != 2.5 {
		t.Errorf("data = %v, want [0.5 2.5]", data)
	}
}

func TestAdamFirstStep(t *testing.T) {
	opt := NewAdam(0.01)
	data := []float64{1}
	grad := []float64{4}
	opt.Step("layer/W", data, grad, 1)

	// On the first step the bias-corrected update is lr * g/(|g|+eps),
	// so the parameter moves by almost exactly the learning rate.
	want := 1 - 0.01*4/(4+1e-8)
	if math.Abs(data[0]-want) > 1e-12 {
		t.Errorf("data[0] = %.15f, want %.15f", data[0], want)
	}
}

func TestAdamStatePerParameter(t *testing.T) {
	opt := NewAdam(0.01)
	a := []float64{0}
	b := []float64{0}
	opt.Step("layer/W", a, []float64{1}, 1)
	opt.Step("layer/B", b, []float64{-1}, 1)

	if a[0] >= 0 {
		t.Errorf("a[0] = %f, want negative", a[0])
	}
	if b[0] <= 0 {
		t.Errorf("b[0] = %f, want positive", b[0])
	}
	if len(opt.state) != 2 {
		t.Errorf("state entries = %d, want 2", len(opt.state))
	}
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	// Minimize (w-3)^2 from w=0.
	opt := NewAdam(0.1)
	w := []float64{0}
	for i := 0; i < 500; i++ {
		g := []float64{2 * (w[0] - 3)}
		opt.Step("w", w, g, 1)
	}
	if math.Abs(w[0]-3) > 0.05 {
		t.Errorf("w = %f, want near 3", w[0])
	}
}

func TestLookupOptimizer(t *testing.T) {
	for _, name := range []string{"sgd", "adam"} {
		opt, err := LookupOptimizer(name)
		if err != nil {
			t.Fatalf("LookupOptimizer(%q) failed: %v", name, err)
		}
		if opt.Name() != name {
			t.Errorf("Name() = %q, want %q", opt.Name(), name)
		}
	}
	if _, err := LookupOptimizer("rmsprop"); err == nil {
		t.Error("expected error for unknown optimizer")
	}
}
