package regression

import (
	"fmt"
	"io"
	"os"

	"seriescnn/network"
	"seriescnn/nn"
	"seriescnn/nn/layers"
	"seriescnn/tensor"
)

// CNNRegressor wraps a configurable 1-D convolutional network for
// time-series regression, after Zhao et al., "Convolutional neural
// networks for time series classification" (2017).
//
// Hyperparameters are stored verbatim at construction; defaults for
// unset values (filter sizes, optimizer, metrics) are resolved when the
// model is built, not before. Fit builds a fresh model every time, so
// refitting discards the previous model and history.
type CNNRegressor struct {
	BaseEstimator

	NEpochs     int
	BatchSize   int
	KernelSize  int
	AvgPoolSize int
	NConvLayers int
	// FilterSizes is the filter count per conv stage; nil resolves to
	// the builder default [6, 12] at build time.
	FilterSizes []int
	// Activation names the function used in the conv stages and the
	// output layer.
	Activation string
	UseBias    bool
	// Optimizer, when nil, resolves to Adam with learning rate 0.01 at
	// build time.
	Optimizer nn.Optimizer
	Loss      string
	// Metrics, when nil, resolves to ["accuracy"] at build time.
	Metrics     []string
	RandomState int64
	// Padding is "same", "valid" or "auto" ("same" for short series,
	// "valid" otherwise).
	Padding   string
	Callbacks []nn.Callback
	Verbose   bool
	// Out receives the model summary and verbose training output;
	// defaults to os.Stdout.
	Out io.Writer

	network    *network.CNNNetwork
	model      *nn.Model
	history    *nn.History
	inputShape [2]int
}

// Option configures a CNNRegressor before construction completes.
type Option func(*CNNRegressor)

func WithNEpochs(n int) Option          { return func(r *CNNRegressor) { r.NEpochs = n } }
func WithBatchSize(n int) Option        { return func(r *CNNRegressor) { r.BatchSize = n } }
func WithKernelSize(n int) Option       { return func(r *CNNRegressor) { r.KernelSize = n } }
func WithAvgPoolSize(n int) Option      { return func(r *CNNRegressor) { r.AvgPoolSize = n } }
func WithNConvLayers(n int) Option      { return func(r *CNNRegressor) { r.NConvLayers = n } }
func WithFilterSizes(s []int) Option    { return func(r *CNNRegressor) { r.FilterSizes = s } }
func WithActivation(name string) Option { return func(r *CNNRegressor) { r.Activation = name } }
func WithUseBias(b bool) Option         { return func(r *CNNRegressor) { r.UseBias = b } }
func WithOptimizer(o nn.Optimizer) Option {
	return func(r *CNNRegressor) { r.Optimizer = o }
}
func WithLoss(name string) Option    { return func(r *CNNRegressor) { r.Loss = name } }
func WithMetrics(m []string) Option  { return func(r *CNNRegressor) { r.Metrics = m } }
func WithRandomState(s int64) Option { return func(r *CNNRegressor) { r.RandomState = s } }
func WithPadding(p string) Option    { return func(r *CNNRegressor) { r.Padding = p } }
func WithCallbacks(cbs ...nn.Callback) Option {
	return func(r *CNNRegressor) { r.Callbacks = cbs }
}
func WithVerbose(v bool) Option     { return func(r *CNNRegressor) { r.Verbose = v } }
func WithOutput(w io.Writer) Option { return func(r *CNNRegressor) { r.Out = w } }

// NewCNNRegressor constructs a regressor with the given options over
// the defaults. The framework dependency probe runs first: if a
// registry entry the estimator relies on is missing, construction
// fails before any hyperparameter is processed. Hyperparameter values
// themselves are not validated here; bad combinations surface when the
// network builder is invoked during Fit.
func NewCNNRegressor(opts ...Option) (*CNNRegressor, error) {
	if err := nn.CheckBackend(nn.SeverityError); err != nil {
		return nil, err
	}
	r := &CNNRegressor{
		NEpochs:     2000,
		BatchSize:   16,
		KernelSize:  7,
		AvgPoolSize: 3,
		NConvLayers: 2,
		Activation:  "linear",
		UseBias:     true,
		Loss:        "mean_squared_error",
		Padding:     network.PaddingAuto,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.network = &network.CNNNetwork{
		KernelSize:  r.KernelSize,
		AvgPoolSize: r.AvgPoolSize,
		NConvLayers: r.NConvLayers,
		FilterSizes: r.FilterSizes,
		Activation:  r.Activation,
		Padding:     r.Padding,
		RandomState: r.RandomState,
	}
	return r, nil
}

// BuildModel constructs a compiled, untrained model for input instances
// of shape (seriesLength, nDimensions). Unset optimizer and metrics
// resolve to their defaults here. Builder and framework errors
// propagate unchanged.
func (r *CNNRegressor) BuildModel(inputShape [2]int) (*nn.Model, error) {
	metrics := r.Metrics
	if metrics == nil {
		metrics = []string{"accuracy"}
	}

	stack, featureWidth, err := r.network.BuildNetwork(inputShape)
	if err != nil {
		return nil, err
	}

	head, err := layers.NewDense("dense_out", featureWidth, 1, r.UseBias, r.RandomState+int64(r.NConvLayers)+1)
	if err != nil {
		return nil, err
	}
	headAct, err := layers.NewActivation("act_out", r.Activation)
	if err != nil {
		return nil, err
	}

	opt := r.Optimizer
	if opt == nil {
		opt = nn.NewAdam(0.01)
	}

	model := nn.NewModel(append(stack, head, headAct)...)
	model.InputShape = []int{inputShape[0], inputShape[1]}
	if err := model.Compile(r.Loss, opt, metrics); err != nil {
		return nil, err
	}
	return model, nil
}

// Fit trains the regressor on X of shape (instances, dimensions,
// seriesLength) against targets y, one per instance. The panel is
// transposed to time-major layout per instance before it reaches the
// network. Fit blocks until training completes; there are no retries,
// and any build or training failure is returned as-is.
func (r *CNNRegressor) Fit(X *tensor.Tensor, y []float64) error {
	if len(X.Shape) != 3 {
		return fmt.Errorf("Fit: X must have shape (instances, dimensions, length), got %v", X.Shape)
	}
	if X.Shape[0] != len(y) {
		return fmt.Errorf("Fit: %d instances but %d targets", X.Shape[0], len(y))
	}

	Xt, err := tensor.Transpose021(X)
	if err != nil {
		return err
	}
	r.inputShape = [2]int{Xt.Shape[1], Xt.Shape[2]}

	model, err := r.BuildModel(r.inputShape)
	if err != nil {
		return err
	}
	if r.Verbose {
		if err := model.Summary(r.out()); err != nil {
			return err
		}
	}

	// Hand the trainer its own copy of the callbacks so per-run state
	// never leaks into the configured list.
	hist, err := model.Fit(Xt, y, nn.FitConfig{
		BatchSize: r.BatchSize,
		Epochs:    r.NEpochs,
		Verbose:   r.Verbose,
		Callbacks: nn.CloneCallbacks(r.Callbacks),
		Out:       r.out(),
	})
	if err != nil {
		return err
	}

	r.model = model
	r.history = hist
	r.setFitted()
	return nil
}

// Predict maps X of shape (instances, dimensions, seriesLength) to one
// prediction per instance using the model from the last Fit.
func (r *CNNRegressor) Predict(X *tensor.Tensor) ([]float64, error) {
	if !r.IsFitted() {
		return nil, fmt.Errorf("Predict: %w", ErrNotFitted)
	}
	if len(X.Shape) != 3 {
		return nil, fmt.Errorf("Predict: X must have shape (instances, dimensions, length), got %v", X.Shape)
	}
	Xt, err := tensor.Transpose021(X)
	if err != nil {
		return nil, err
	}
	return r.model.Predict(Xt)
}

// History returns the training record of the last Fit, or nil.
func (r *CNNRegressor) History() *nn.History { return r.history }

// Model returns the fitted model of the last Fit, or nil.
func (r *CNNRegressor) Model() *nn.Model { return r.model }

// InputShape returns the per-instance (length, dimensions) shape
// recorded by the last Fit.
func (r *CNNRegressor) InputShape() [2]int { return r.inputShape }

func (r *CNNRegressor) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

var _ Estimator = (*CNNRegressor)(nil)
