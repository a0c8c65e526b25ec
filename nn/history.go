package nn

// History records per-epoch loss and metric values produced by a
// training run. A new History is created for every Fit call.
type History struct {
	Epochs  int
	Loss    []float64
	Metrics map[string][]float64
}

func newHistory(metricNames []string) *History {
	h := &History{Metrics: make(map[string][]float64, len(metricNames))}
	for _, name := range metricNames {
		h.Metrics[name] = nil
	}
	return h
}

func (h *History) record(loss float64, metrics map[string]float64) {
	h.Epochs++
	h.Loss = append(h.Loss, loss)
	for name, v := range metrics {
		h.Metrics[name] = append(h.Metrics[name], v)
	}
}

// Final returns the loss of the last recorded epoch.
func (h *History) Final() float64 {
	if len(h.Loss) == 0 {
		return 0
	}
	return h.Loss[len(h.Loss)-1]
}
