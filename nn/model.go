package nn

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"seriescnn/tensor"
)

// Model is a compiled layer stack: the feature subgraph plus output
// head, bound to a loss, an optimizer and a metric set.
type Model struct {
	Layers []Module
	// InputShape is the per-instance shape fed to the first layer,
	// (seriesLength, nDimensions) for time-series input.
	InputShape []int

	loss        Loss
	optimizer   Optimizer
	metricNames []string
	metrics     []Metric
	compiled    bool
}

// NewModel assembles an uncompiled model from a layer chain.
func NewModel(layers ...Module) *Model {
	return &Model{Layers: layers}
}

// Compile binds the model to a loss, optimizer and metric set. Names
// are resolved through the framework registries; unknown names fail
// here, before any training happens.
func (m *Model) Compile(lossName string, opt Optimizer, metricNames []string) error {
	loss, err := LookupLoss(lossName)
	if err != nil {
		return err
	}
	metrics := make([]Metric, len(metricNames))
	for i, name := range metricNames {
		if metrics[i], err = LookupMetric(name); err != nil {
			return err
		}
	}
	if opt == nil {
		return errors.New("Compile: optimizer must not be nil")
	}
	m.loss = loss
	m.optimizer = opt
	m.metricNames = append([]string(nil), metricNames...)
	m.metrics = metrics
	m.compiled = true
	return nil
}

// Optimizer returns the optimizer the model was compiled with.
func (m *Model) Optimizer() Optimizer { return m.optimizer }

// FitConfig carries the per-run training settings.
type FitConfig struct {
	BatchSize int
	Epochs    int
	Verbose   bool
	Callbacks []Callback
	// Out receives verbose progress lines; defaults to os.Stdout.
	Out io.Writer
}

type batchRange struct{ start, end int }

func batchRanges(n, batchSize int) []batchRange {
	if batchSize <= 0 {
		batchSize = n
	}
	var out []batchRange
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		out = append(out, batchRange{start, end})
	}
	return out
}

// Fit trains the model on X of shape (instances, length, dimensions)
// against targets y. It blocks until all epochs complete, a callback
// requests a stop, or an error occurs. A fresh History is returned.
func (m *Model) Fit(X *tensor.Tensor, y []float64, cfg FitConfig) (*History, error) {
	if !m.compiled {
		return nil, errors.New("Fit: model is not compiled")
	}
	if len(X.Shape) != 3 {
		return nil, fmt.Errorf("Fit: X must be 3-D (instances, length, dimensions), got shape %v", X.Shape)
	}
	n := X.Shape[0]
	if n != len(y) {
		return nil, fmt.Errorf("Fit: %d instances but %d targets", n, len(y))
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	for _, cb := range cfg.Callbacks {
		if err := cb.OnTrainBegin(m); err != nil {
			return nil, err
		}
	}

	hist := newHistory(m.metricNames)
	batches := batchRanges(n, cfg.BatchSize)
	preds := make([]float64, n)

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		for _, b := range batches {
			m.zeroGrads()
			for i := b.start; i < b.end; i++ {
				xi, err := X.Instance(i)
				if err != nil {
					return nil, err
				}
				yi, err := m.Forward(xi)
				if err != nil {
					return nil, err
				}
				if len(yi.Data) != 1 {
					return nil, fmt.Errorf("Fit: output layer produced %d values per instance, want 1", len(yi.Data))
				}
				preds[i] = yi.Data[0]
				grad := tensor.NewWithData([]float64{m.loss.Grad(y[i], preds[i])})
				if err := m.backward(grad); err != nil {
					return nil, err
				}
			}
			m.applyGrads(1 / float64(b.end-b.start))
		}

		epochLoss := m.loss.Eval(y, preds)
		logs := map[string]float64{"loss": epochLoss}
		metricVals := make(map[string]float64, len(m.metrics))
		for i, metric := range m.metrics {
			v := metric(y, preds)
			metricVals[m.metricNames[i]] = v
			logs[m.metricNames[i]] = v
		}
		hist.record(epochLoss, metricVals)

		if cfg.Verbose {
			fmt.Fprintf(out, "Epoch %d/%d | loss: %.6f", epoch, cfg.Epochs, epochLoss)
			for _, name := range m.metricNames {
				fmt.Fprintf(out, " | %s: %.6f", name, metricVals[name])
			}
			fmt.Fprintln(out)
		}

		stop := false
		for _, cb := range cfg.Callbacks {
			err := cb.OnEpochEnd(epoch, logs)
			if errors.Is(err, ErrStopTraining) {
				stop = true
				continue
			}
			if err != nil {
				return nil, err
			}
		}
		if stop {
			if cfg.Verbose {
				fmt.Fprintf(out, "Stopping early at epoch %d\n", epoch)
			}
			break
		}
	}
	return hist, nil
}

// Forward runs one instance through the layer chain.
func (m *Model) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	var err error
	out := x
	for _, layer := range m.Layers {
		if out, err = layer.Forward(out); err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer.Name(), err)
		}
	}
	return out, nil
}

func (m *Model) backward(grad *tensor.Tensor) error {
	var err error
	out := grad
	for i := len(m.Layers) - 1; i >= 0; i-- {
		if out, err = m.Layers[i].Backward(out); err != nil {
			return fmt.Errorf("layer %s: %w", m.Layers[i].Name(), err)
		}
	}
	return nil
}

func (m *Model) zeroGrads() {
	for _, layer := range m.Layers {
		if t, ok := layer.(Trainable); ok {
			t.ZeroGrad()
		}
	}
}

func (m *Model) applyGrads(scale float64) {
	for _, layer := range m.Layers {
		t, ok := layer.(Trainable)
		if !ok {
			continue
		}
		for _, p := range t.Params() {
			m.optimizer.Step(layer.Name()+"/"+p.Name, p.Data, p.Grad, scale)
		}
	}
}

// Predict maps X of shape (instances, length, dimensions) to one
// scalar prediction per instance.
func (m *Model) Predict(X *tensor.Tensor) ([]float64, error) {
	if len(X.Shape) != 3 {
		return nil, fmt.Errorf("Predict: X must be 3-D (instances, length, dimensions), got shape %v", X.Shape)
	}
	n := X.Shape[0]
	preds := make([]float64, n)
	for i := 0; i < n; i++ {
		xi, err := X.Instance(i)
		if err != nil {
			return nil, err
		}
		yi, err := m.Forward(xi)
		if err != nil {
			return nil, err
		}
		if len(yi.Data) != 1 {
			return nil, fmt.Errorf("Predict: output layer produced %d values per instance, want 1", len(yi.Data))
		}
		preds[i] = yi.Data[0]
	}
	return preds, nil
}

// Weights returns every trainable parameter block with ids of the form
// layerName/paramName. The slices alias live layer storage.
func (m *Model) Weights() []Param {
	var out []Param
	for _, layer := range m.Layers {
		t, ok := layer.(Trainable)
		if !ok {
			continue
		}
		for _, p := range t.Params() {
			out = append(out, Param{
				Name:  layer.Name() + "/" + p.Name,
				Shape: p.Shape,
				Data:  p.Data,
				Grad:  p.Grad,
			})
		}
	}
	return out
}

// SetWeights copies parameter values in by id, as produced by Weights.
func (m *Model) SetWeights(weights map[string][]float64) error {
	for _, p := range m.Weights() {
		data, ok := weights[p.Name]
		if !ok {
			continue
		}
		if len(data) != len(p.Data) {
			return fmt.Errorf("SetWeights: %s has %d values, want %d", p.Name, len(data), len(p.Data))
		}
		copy(p.Data, data)
	}
	return nil
}

// Summary writes a human-readable table of layers, output shapes and
// parameter counts.
func (m *Model) Summary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Layer\tOutput shape\tParams")
	shape := m.InputShape
	total := 0
	var err error
	for _, layer := range m.Layers {
		if shape, err = layer.OutputShape(shape); err != nil {
			return err
		}
		nParams := 0
		if t, ok := layer.(Trainable); ok {
			for _, p := range t.Params() {
				nParams += len(p.Data)
			}
		}
		total += nParams
		fmt.Fprintf(tw, "%s\t%v\t%d\n", layer.Name(), shape, nParams)
	}
	fmt.Fprintf(tw, "Total\t\t%d\n", total)
	return tw.Flush()
}
