package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFilterSizes parses a comma-separated list of per-layer filter
// counts, e.g. "6,12". An empty string yields nil (use defaults).
func ParseFilterSizes(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	sizes := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("filter sizes: %w", err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("filter sizes must be positive, got %d", n)
		}
		sizes[i] = n
	}
	return sizes, nil
}

// Config holds training-run configuration for the command-line tools.
type Config struct {
	Epochs       int
	BatchSize    int
	Samples      int
	SeriesLength int
	Dimensions   int
	Padding      string
}

// ValidateConfig validates a training-run configuration.
func ValidateConfig(config *Config) error {
	if config.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive")
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if config.Samples <= 0 {
		return fmt.Errorf("sample count must be positive")
	}
	if config.SeriesLength <= 0 {
		return fmt.Errorf("series length must be positive")
	}
	if config.Dimensions <= 0 {
		return fmt.Errorf("dimension count must be positive")
	}
	switch config.Padding {
	case "auto", "same", "valid":
	default:
		return fmt.Errorf("padding must be 'auto', 'same' or 'valid'")
	}
	return nil
}
