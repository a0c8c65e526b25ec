package regression

import "seriescnn/nn"

// GetTestParams returns canned small-scale option sets for building
// cheap CNNRegressor instances in tests. parameterSet selects a named
// set; only "default" is defined, and unknown names fall back to it.
// The callback-bearing configuration is appended only when the
// framework backend probe succeeds.
func GetTestParams(parameterSet string) [][]Option {
	param1 := []Option{
		WithNEpochs(10),
		WithBatchSize(4),
		WithAvgPoolSize(4),
	}
	param2 := []Option{
		WithNEpochs(12),
		WithBatchSize(6),
		WithKernelSize(2),
		WithNConvLayers(1),
		WithVerbose(true),
	}
	params := [][]Option{param1, param2}

	if nn.BackendAvailable() {
		params = append(params, []Option{
			WithNEpochs(2),
			WithCallbacks(&nn.LambdaCallback{}),
		})
	}
	return params
}
