package nn

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"seriescnn/tensor"
)

// scaleLayer is a one-parameter test layer: y = w * sum(x). It gives
// the training loop a convex problem with a known solution.
type scaleLayer struct {
	w     []float64 // len 1
	gradW []float64

	lastSum float64
	lastIn  []int
}

func newScaleLayer(w float64) *scaleLayer {
	return &scaleLayer{w: []float64{w}, gradW: []float64{0}}
}

func (s *scaleLayer) Name() string { return "scale" }

func (s *scaleLayer) OutputShape(in []int) ([]int, error) { return []int{1}, nil }

func (s *scaleLayer) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	sum := 0.0
	for _, v := range x.Data {
		sum += v
	}
	s.lastSum = sum
	s.lastIn = x.Shape
	return tensor.NewWithData([]float64{s.w[0] * sum}), nil
}

func (s *scaleLayer) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	g := grad.Data[0]
	s.gradW[0] += g * s.lastSum
	dX := tensor.New(s.lastIn...)
	for i := range dX.Data {
		dX.Data[i] = g * s.w[0]
	}
	return dX, nil
}

func (s *scaleLayer) Params() []Param {
	return []Param{{Name: "W", Shape: []int{1}, Data: s.w, Grad: s.gradW}}
}

func (s *scaleLayer) ZeroGrad() { s.gradW[0] = 0 }

// lineData builds n instances of shape (1, 1) with x = i+1 and targets
// y = slope * x.
func lineData(n int, slope float64) (*tensor.Tensor, []float64) {
	X := tensor.New(n, 1, 1)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X.Data[i] = float64(i + 1)
		y[i] = slope * float64(i+1)
	}
	return X, y
}

func newScaleModel(t *testing.T, lr float64) (*Model, *scaleLayer) {
	t.Helper()
	layer := newScaleLayer(0.5)
	m := NewModel(layer)
	m.InputShape = []int{1, 1}
	if err := m.Compile("mean_squared_error", NewSGD(lr), []string{"mse"}); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return m, layer
}

func TestFitReducesLoss(t *testing.T) {
	m, _ := newScaleModel(t, 0.01)
	X, y := lineData(8, 2.0)

	hist, err := m.Fit(X, y, FitConfig{BatchSize: 4, Epochs: 30})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if hist.Epochs != 30 {
		t.Fatalf("Epochs = %d, want 30", hist.Epochs)
	}
	if hist.Final() >= hist.Loss[0] {
		t.Errorf("loss did not decrease: first %.6f, last %.6f", hist.Loss[0], hist.Final())
	}
}

func TestFitHistoryShape(t *testing.T) {
	m, _ := newScaleModel(t, 0.01)
	X, y := lineData(4, 1.0)

	hist, err := m.Fit(X, y, FitConfig{BatchSize: 2, Epochs: 5})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(hist.Loss) != 5 {
		t.Errorf("len(Loss) = %d, want 5", len(hist.Loss))
	}
	if len(hist.Metrics["mse"]) != 5 {
		t.Errorf("len(Metrics[mse]) = %d, want 5", len(hist.Metrics["mse"]))
	}
}

func TestFitNotCompiled(t *testing.T) {
	m := NewModel(newScaleLayer(1))
	X, y := lineData(2, 1.0)
	if _, err := m.Fit(X, y, FitConfig{Epochs: 1}); err == nil {
		t.Fatal("expected error for uncompiled model")
	}
}

func TestFitBadShapes(t *testing.T) {
	m, _ := newScaleModel(t, 0.01)

	flat := tensor.New(4, 2)
	if _, err := m.Fit(flat, []float64{1, 2, 3, 4}, FitConfig{Epochs: 1}); err == nil {
		t.Error("expected error for 2-D input")
	}

	X, _ := lineData(4, 1.0)
	if _, err := m.Fit(X, []float64{1, 2}, FitConfig{Epochs: 1}); err == nil {
		t.Error("expected error for target length mismatch")
	}
}

func TestFitCallbackStop(t *testing.T) {
	m, _ := newScaleModel(t, 0.01)
	X, y := lineData(4, 1.0)

	stopAt := 3
	cb := &LambdaCallback{
		EpochEnd: func(epoch int, logs map[string]float64) error {
			if epoch >= stopAt {
				return ErrStopTraining
			}
			return nil
		},
	}
	hist, err := m.Fit(X, y, FitConfig{BatchSize: 2, Epochs: 100, Callbacks: []Callback{cb}})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if hist.Epochs != stopAt {
		t.Errorf("Epochs = %d, want %d", hist.Epochs, stopAt)
	}
}

func TestFitCallbackError(t *testing.T) {
	m, _ := newScaleModel(t, 0.01)
	X, y := lineData(4, 1.0)

	boom := errors.New("boom")
	cb := &LambdaCallback{
		EpochEnd: func(epoch int, logs map[string]float64) error { return boom },
	}
	if _, err := m.Fit(X, y, FitConfig{Epochs: 2, Callbacks: []Callback{cb}}); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestFitVerboseOutput(t *testing.T) {
	m, _ := newScaleModel(t, 0.01)
	X, y := lineData(4, 1.0)

	var buf bytes.Buffer
	if _, err := m.Fit(X, y, FitConfig{Epochs: 2, Verbose: true, Out: &buf}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Epoch 1/2") || !strings.Contains(out, "loss:") {
		t.Errorf("unexpected verbose output: %q", out)
	}
}

func TestCompileUnknownNames(t *testing.T) {
	m := NewModel(newScaleLayer(1))
	if err := m.Compile("huber", NewSGD(0.1), nil); err == nil {
		t.Error("expected error for unknown loss")
	}
	if err := m.Compile("mean_squared_error", NewSGD(0.1), []string{"f1"}); err == nil {
		t.Error("expected error for unknown metric")
	}
	if err := m.Compile("mean_squared_error", nil, nil); err == nil {
		t.Error("expected error for nil optimizer")
	}
}

func TestPredictShape(t *testing.T) {
	m, _ := newScaleModel(t, 0.01)
	X, _ := lineData(6, 1.0)

	preds, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(preds) != 6 {
		t.Fatalf("len(preds) = %d, want 6", len(preds))
	}
	// w starts at 0.5, so predictions are 0.5 * x.
	for i, p := range preds {
		want := 0.5 * float64(i+1)
		if p != want {
			t.Errorf("preds[%d] = %f, want %f", i, p, want)
		}
	}
}

func TestSummary(t *testing.T) {
	m, _ := newScaleModel(t, 0.01)

	var buf bytes.Buffer
	if err := m.Summary(&buf); err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "scale") || !strings.Contains(out, "Total") {
		t.Errorf("unexpected summary: %q", out)
	}
}

func TestBatchRanges(t *testing.T) {
	ranges := batchRanges(10, 4)
	want := []batchRange{{0, 4}, {4, 8}, {8, 10}}
	if len(ranges) != len(want) {
		t.Fatalf("got %d ranges, want %d", len(ranges), len(want))
	}
	for i, r := range ranges {
		if r != want[i] {
			t.Errorf("ranges[%d] = %v, want %v", i, r, want[i])
		}
	}

	if got := batchRanges(3, 0); len(got) != 1 || got[0] != (batchRange{0, 3}) {
		t.Errorf("batchRanges(3, 0) = %v, want one full batch", got)
	}
}
