package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvgPool1DForward(t *testing.T) {
	pool, err := NewAvgPool1D("pool_0", 2)
	require.NoError(t, err)

	in := seriesTensor(t, []int{5, 1}, []float64{1, 2, 3, 4, 5})
	out, err := pool.Forward(in)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, out.Shape)
	assert.Equal(t, []float64{1.5, 3.5}, out.Data, "trailing partial window is dropped")
}

func TestAvgPool1DMultiChannel(t *testing.T) {
	pool, err := NewAvgPool1D("pool_0", 3)
	require.NoError(t, err)

	in := seriesTensor(t, []int{3, 2}, []float64{
		1, 10,
		2, 20,
		3, 30,
	})
	out, err := pool.Forward(in)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, out.Shape)
	assert.Equal(t, []float64{2, 20}, out.Data)
}

func TestAvgPool1DBackward(t *testing.T) {
	pool, err := NewAvgPool1D("pool_0", 2)
	require.NoError(t, err)

	in := seriesTensor(t, []int{5, 1}, []float64{1, 2, 3, 4, 5})
	_, err = pool.Forward(in)
	require.NoError(t, err)

	grad := seriesTensor(t, []int{2, 1}, []float64{1, 1})
	dX, err := pool.Backward(grad)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 1}, dX.Shape)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5, 0}, dX.Data,
		"dropped positions get zero gradient")
}

func TestAvgPool1DWindowTooLarge(t *testing.T) {
	pool, err := NewAvgPool1D("pool_0", 4)
	require.NoError(t, err)

	in := seriesTensor(t, []int{3, 1}, []float64{1, 2, 3})
	_, err = pool.Forward(in)
	assert.Error(t, err)
}

func TestAvgPool1DBadWindow(t *testing.T) {
	_, err := NewAvgPool1D("pool_0", 0)
	assert.Error(t, err)
}
