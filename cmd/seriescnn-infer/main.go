// seriescnn-infer: Inference using a saved weight snapshot
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"seriescnn/persist"
	"seriescnn/regression"
	"seriescnn/tensor"
	"seriescnn/utils"
)

var (
	weightsFile = flag.String("weights", "", "Weight snapshot file")
	inputFile   = flag.String("input", "", "Input JSON file (flat series values)")
	length      = flag.Int("length", 50, "Series length (time points)")
	dims        = flag.Int("dims", 1, "Series dimensions (channels)")
	kernelSize  = flag.Int("kernel", 7, "Convolution kernel size")
	poolSize    = flag.Int("pool", 3, "Average pooling window")
	convLayers  = flag.Int("layers", 2, "Number of conv-pool stages")
	filterSizes = flag.String("filters", "", "Per-layer filter counts, e.g. 6,12")
	padding     = flag.String("padding", "auto", "Padding: auto, same, valid")
	seed        = flag.Int64("seed", 0, "Random seed (must match training)")
	verbose     = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                  seriescnn Inference                         ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")

	filters, err := utils.ParseFilterSizes(*filterSizes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	reg, err := regression.NewCNNRegressor(
		regression.WithKernelSize(*kernelSize),
		regression.WithAvgPoolSize(*poolSize),
		regression.WithNConvLayers(*convLayers),
		regression.WithFilterSizes(filters),
		regression.WithPadding(*padding),
		regression.WithRandomState(*seed),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building regressor: %v\n", err)
		os.Exit(1)
	}
	model, err := reg.BuildModel([2]int{*length, *dims})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building model: %v\n", err)
		os.Exit(1)
	}

	if *weightsFile == "" {
		fmt.Println("\nNo weights file. Running demo mode with initial weights...")
	} else {
		if err := persist.LoadModel(*weightsFile, model); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading weights: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded weights from %s\n", *weightsFile)
	}

	series, err := loadSeries(*inputFile, *dims, *length)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading input: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nRunning inference...")
	start := time.Now()
	preds, err := model.Predict(series)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Time: %.0fus\n", utils.DurationUS(time.Since(start)))
	fmt.Printf("Prediction: %.6f\n", preds[0])
}

// loadSeries reads one series as a flat JSON array of d*m values laid
// out channel-major, and reshapes it to the model's (1, m, d) input.
// With no input file a random sine series is generated instead.
func loadSeries(path string, d, m int) (*tensor.Tensor, error) {
	var flat []float64
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &flat); err != nil {
			return nil, fmt.Errorf("parsing input: %w", err)
		}
		if len(flat) != d*m {
			return nil, fmt.Errorf("input has %d values, want %d (dims*length)", len(flat), d*m)
		}
	} else {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		flat = make([]float64, d*m)
		phase := 2 * math.Pi * rng.Float64()
		for i := range flat {
			flat[i] = math.Sin(2*math.Pi*float64(i%m)/float64(m) + phase)
		}
	}

	x := tensor.New(1, m, d)
	for c := 0; c < d; c++ {
		for t := 0; t < m; t++ {
			x.Set(flat[c*m+t], 0, t, c)
		}
	}
	return x, nil
}
