// Package persist saves and restores model weights as xz-compressed
// JSON snapshot files.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"seriescnn/nn"
)

// SnapshotVersion identifies the on-disk format.
const SnapshotVersion = "1"

// WeightData is one serialized parameter block.
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// LayerWeight groups the weight and bias of one layer.
type LayerWeight struct {
	Weight *WeightData `json:"weight,omitempty"`
	Bias   *WeightData `json:"bias,omitempty"`
}

// ModelWeights is a snapshot of every trainable parameter in a model,
// keyed by layer name.
type ModelWeights struct {
	Version string                 `json:"version"`
	Layers  map[string]LayerWeight `json:"layers"`
}

// Snapshot copies a model's parameters into a serializable form.
func Snapshot(m *nn.Model) *ModelWeights {
	w := &ModelWeights{Version: SnapshotVersion, Layers: make(map[string]LayerWeight)}
	for _, p := range m.Weights() {
		layer, kind, ok := splitParamID(p.Name)
		if !ok {
			continue
		}
		wd := &WeightData{
			Name:  p.Name,
			Shape: append([]int(nil), p.Shape...),
			Data:  append([]float64(nil), p.Data...),
		}
		lw := w.Layers[layer]
		switch kind {
		case "W":
			lw.Weight = wd
		case "B":
			lw.Bias = wd
		}
		w.Layers[layer] = lw
	}
	return w
}

// Apply copies snapshot values into a model with matching layer names
// and parameter sizes.
func Apply(m *nn.Model, w *ModelWeights) error {
	flat := make(map[string][]float64)
	for _, lw := range w.Layers {
		if lw.Weight != nil {
			flat[lw.Weight.Name] = lw.Weight.Data
		}
		if lw.Bias != nil {
			flat[lw.Bias.Name] = lw.Bias.Data
		}
	}
	return m.SetWeights(flat)
}

// Save writes a snapshot to path as xz-compressed JSON.
func Save(path string, w *ModelWeights) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	zw, err := xz.NewWriter(f)
	if err != nil {
		return fmt.Errorf("opening xz stream: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(w); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing xz stream: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(path string) (*ModelWeights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	zr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening xz stream: %w", err)
	}
	var w ModelWeights
	if err := json.NewDecoder(zr).Decode(&w); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &w, nil
}

// SaveModel snapshots a model and writes it to path.
func SaveModel(path string, m *nn.Model) error {
	return Save(path, Snapshot(m))
}

// LoadModel reads a snapshot from path and applies it to m.
func LoadModel(path string, m *nn.Model) error {
	w, err := Load(path)
	if err != nil {
		return err
	}
	return Apply(m, w)
}

func splitParamID(id string) (layer, kind string, ok bool) {
	i := strings.LastIndex(id, "/")
	if i < 0 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}
