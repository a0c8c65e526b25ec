package regression

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seriescnn/nn"
	"seriescnn/tensor"
)

// panelData builds n sine series of shape (n, d, m) with the series
// amplitude as the regression target.
func panelData(n, d, m int) (*tensor.Tensor, []float64) {
	X := tensor.New(n, d, m)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		amp := 0.5 + 0.1*float64(i)
		for c := 0; c < d; c++ {
			for t := 0; t < m; t++ {
				v := amp * math.Sin(2*math.Pi*float64(t)/float64(m)+float64(c))
				X.Set(v, i, c, t)
			}
		}
		y[i] = amp
	}
	return X, y
}

func TestNewCNNRegressorDefaults(t *testing.T) {
	r, err := NewCNNRegressor()
	require.NoError(t, err)

	assert.Equal(t, 2000, r.NEpochs)
	assert.Equal(t, 16, r.BatchSize)
	assert.Equal(t, 7, r.KernelSize)
	assert.Equal(t, 3, r.AvgPoolSize)
	assert.Equal(t, 2, r.NConvLayers)
	assert.Equal(t, "linear", r.Activation)
	assert.True(t, r.UseBias)
	assert.Equal(t, "mean_squared_error", r.Loss)
	assert.Equal(t, "auto", r.Padding)
	assert.Nil(t, r.FilterSizes, "filter sizes stay nil until build")
	assert.Nil(t, r.Optimizer, "optimizer stays nil until build")
	assert.Nil(t, r.Metrics, "metrics stay nil until build")
	assert.False(t, r.IsFitted())
}

func TestFitPredict(t *testing.T) {
	X, y := panelData(20, 1, 50)

	r, err := NewCNNRegressor(
		WithNEpochs(10),
		WithBatchSize(4),
		WithRandomState(1),
	)
	require.NoError(t, err)
	require.NoError(t, r.Fit(X, y))

	assert.True(t, r.IsFitted())
	assert.Equal(t, [2]int{50, 1}, r.InputShape())

	hist := r.History()
	require.NotNil(t, hist)
	assert.Equal(t, 10, hist.Epochs)
	assert.Len(t, hist.Metrics["accuracy"], 10)

	preds, err := r.Predict(X)
	require.NoError(t, err)
	assert.Len(t, preds, 20)
	for i, p := range preds {
		assert.False(t, math.IsNaN(p), "preds[%d] is NaN", i)
	}
}

func TestFitMultivariate(t *testing.T) {
	X, y := panelData(8, 3, 30)

	r, err := NewCNNRegressor(
		WithNEpochs(2),
		WithBatchSize(4),
	)
	require.NoError(t, err)
	require.NoError(t, r.Fit(X, y))

	preds, err := r.Predict(X)
	require.NoError(t, err)
	assert.Len(t, preds, 8)
}

func TestFitSingleStage(t *testing.T) {
	X, y := panelData(6, 1, 12)

	r, err := NewCNNRegressor(
		WithNEpochs(3),
		WithBatchSize(3),
		WithKernelSize(2),
		WithNConvLayers(1),
	)
	require.NoError(t, err)
	require.NoError(t, r.Fit(X, y))
	assert.Equal(t, 3, r.History().Epochs)
}

func TestRefitReplacesModelAndHistory(t *testing.T) {
	X, y := panelData(6, 1, 20)

	r, err := NewCNNRegressor(WithNEpochs(2), WithBatchSize(3))
	require.NoError(t, err)
	require.NoError(t, r.Fit(X, y))
	firstModel := r.Model()
	firstHist := r.History()

	require.NoError(t, r.Fit(X, y))
	assert.NotSame(t, firstModel, r.Model(), "refit must build a fresh model")
	assert.NotSame(t, firstHist, r.History(), "refit must record a fresh history")
	assert.Equal(t, 2, r.History().Epochs)
}

func TestPredictBeforeFit(t *testing.T) {
	r, err := NewCNNRegressor()
	require.NoError(t, err)

	X, _ := panelData(3, 1, 20)
	_, err = r.Predict(X)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFitBadShapes(t *testing.T) {
	r, err := NewCNNRegressor(WithNEpochs(1))
	require.NoError(t, err)

	flat := tensor.New(4, 20)
	assert.Error(t, r.Fit(flat, []float64{1, 2, 3, 4}), "2-D panel must be rejected")

	X, _ := panelData(4, 1, 20)
	assert.Error(t, r.Fit(X, []float64{1, 2}), "target length mismatch must be rejected")
}

// cloneCounter records how often Fit asks for an independent copy.
type cloneCounter struct {
	nn.LambdaCallback
	clones int
	epochs int
}

func (c *cloneCounter) CloneCallback() nn.Callback {
	c.clones++
	return &nn.LambdaCallback{
		EpochEnd: func(epoch int, logs map[string]float64) error {
			c.epochs++
			return nil
		},
	}
}

func TestFitDoesNotShareCallbackState(t *testing.T) {
	X, y := panelData(6, 1, 20)

	cb := &cloneCounter{}
	r, err := NewCNNRegressor(
		WithNEpochs(3),
		WithBatchSize(3),
		WithCallbacks(cb),
	)
	require.NoError(t, err)
	require.NoError(t, r.Fit(X, y))

	assert.Equal(t, 1, cb.clones, "training must run on a cloned callback")
	assert.Equal(t, 3, cb.epochs, "the clone must observe every epoch")

	require.Len(t, r.Callbacks, 1)
	assert.Same(t, cb, r.Callbacks[0], "configured list must be untouched")
}

func TestBuildModelHead(t *testing.T) {
	r, err := NewCNNRegressor()
	require.NoError(t, err)

	model, err := r.BuildModel([2]int{50, 1})
	require.NoError(t, err)

	// The output head is a single unit: one prediction per instance.
	var headParams int
	for _, p := range model.Weights() {
		if p.Name == "dense_out/W" {
			assert.Equal(t, 1, p.Shape[0], "head must have exactly one unit")
			headParams++
		}
		if p.Name == "dense_out/B" {
			assert.Len(t, p.Data, 1)
			headParams++
		}
	}
	assert.Equal(t, 2, headParams, "head weight and bias must both be present")
}

func TestBuildModelNoBiasHead(t *testing.T) {
	r, err := NewCNNRegressor(WithUseBias(false))
	require.NoError(t, err)

	model, err := r.BuildModel([2]int{50, 1})
	require.NoError(t, err)
	for _, p := range model.Weights() {
		assert.NotEqual(t, "dense_out/B", p.Name, "bias must be absent when disabled")
	}
}

func TestBuildModelDeterministic(t *testing.T) {
	a, err := NewCNNRegressor(WithRandomState(42))
	require.NoError(t, err)
	b, err := NewCNNRegressor(WithRandomState(42))
	require.NoError(t, err)

	ma, err := a.BuildModel([2]int{30, 1})
	require.NoError(t, err)
	mb, err := b.BuildModel([2]int{30, 1})
	require.NoError(t, err)

	wa := ma.Weights()
	wb := mb.Weights()
	require.Equal(t, len(wa), len(wb))
	for i := range wa {
		assert.Equal(t, wa[i].Data, wb[i].Data, "weights %s differ across equally seeded builds", wa[i].Name)
	}
}

func TestVerboseSummary(t *testing.T) {
	X, y := panelData(4, 1, 20)

	var buf bytes.Buffer
	r, err := NewCNNRegressor(
		WithNEpochs(1),
		WithBatchSize(2),
		WithVerbose(true),
		WithOutput(&buf),
	)
	require.NoError(t, err)
	require.NoError(t, r.Fit(X, y))

	out := buf.String()
	assert.Contains(t, out, "conv_1")
	assert.Contains(t, out, "dense_out")
	assert.Contains(t, out, "Epoch 1/1")
}

func TestMissingDependencyAtConstruction(t *testing.T) {
	nn.DeregisterLoss("mean_squared_error")
	defer nn.RegisterLoss("mean_squared_error", func() nn.Loss { return nn.MeanSquaredError{} })

	_, err := NewCNNRegressor()
	assert.ErrorIs(t, err, nn.ErrMissingDependency)
}

func TestGetTestParams(t *testing.T) {
	sets := GetTestParams("default")
	require.GreaterOrEqual(t, len(sets), 2)

	X, y := panelData(6, 1, 20)
	for i, opts := range sets {
		r, err := NewCNNRegressor(append(opts, WithOutput(&bytes.Buffer{}))...)
		require.NoError(t, err, "set %d must construct", i)
		// Cap the canned epoch counts so the suite stays fast.
		r.NEpochs = 2
		require.NoError(t, r.Fit(X, y), "set %d must fit", i)

		preds, err := r.Predict(X)
		require.NoError(t, err, "set %d must predict", i)
		assert.Len(t, preds, 6)
	}
}
