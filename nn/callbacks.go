package nn

import "errors"

// ErrStopTraining is returned by a callback to end training cleanly
// after the current epoch. Fit treats it as a stop request, not a
// failure.
var ErrStopTraining = errors.New("stop training")

// Callback observes a training run. Logs maps "loss" and each compiled
// metric name to its value for the finished epoch.
type Callback interface {
	OnTrainBegin(m *Model) error
	OnEpochEnd(epoch int, logs map[string]float64) error
}

// CallbackCloner is implemented by callbacks that can produce an
// independent copy of themselves, so per-run state is never shared
// between fits.
type CallbackCloner interface {
	CloneCallback() Callback
}

// CloneCallbacks returns an independent copy of a callback list.
// Callbacks implementing CallbackCloner are cloned; others are carried
// over as-is into the new slice.
func CloneCallbacks(cbs []Callback) []Callback {
	if cbs == nil {
		return nil
	}
	out := make([]Callback, len(cbs))
	for i, cb := range cbs {
		if c, ok := cb.(CallbackCloner); ok {
			out[i] = c.CloneCallback()
		} else {
			out[i] = cb
		}
	}
	return out
}

// LambdaCallback adapts plain functions into a Callback. Nil fields are
// skipped.
type LambdaCallback struct {
	TrainBegin func(m *Model) error
	EpochEnd   func(epoch int, logs map[string]float64) error
}

func (c *LambdaCallback) OnTrainBegin(m *Model) error {
	if c.TrainBegin == nil {
		return nil
	}
	return c.TrainBegin(m)
}

func (c *LambdaCallback) OnEpochEnd(epoch int, logs map[string]float64) error {
	if c.EpochEnd == nil {
		return nil
	}
	return c.EpochEnd(epoch, logs)
}

// CloneCallback copies the function fields into a fresh instance.
func (c *LambdaCallback) CloneCallback() Callback {
	cp := *c
	return &cp
}

// EarlyStopping stops training when a monitored value stops improving
// (improvement = decrease by more than MinDelta) for Patience epochs in
// a row.
type EarlyStopping struct {
	Monitor  string // logs key to watch, default "loss"
	MinDelta float64
	Patience int

	best    float64
	wait    int
	started bool
}

func (c *EarlyStopping) monitorKey() string {
	if c.Monitor == "" {
		return "loss"
	}
	return c.Monitor
}

func (c *EarlyStopping) OnTrainBegin(m *Model) error {
	c.best = 0
	c.wait = 0
	c.started = false
	return nil
}

func (c *EarlyStopping) OnEpochEnd(epoch int, logs map[string]float64) error {
	v, ok := logs[c.monitorKey()]
	if !ok {
		return nil
	}
	if !c.started || c.best-v > c.MinDelta {
		c.best = v
		c.wait = 0
		c.started = true
		return nil
	}
	c.wait++
	if c.wait > c.Patience {
		return ErrStopTraining
	}
	return nil
}

// CloneCallback returns an EarlyStopping with the same configuration
// and fresh counters.
func (c *EarlyStopping) CloneCallback() Callback {
	return &EarlyStopping{Monitor: c.Monitor, MinDelta: c.MinDelta, Patience: c.Patience}
}
