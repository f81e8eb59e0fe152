package geostat

import (
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellDeclusterWeights(t *testing.T) {
	assert := assert.New(t)

	// Three clustered samples in one cell, one isolated sample.
	coords := []vec3d.T{
		{1, 1, 1}, {2, 2, 1}, {3, 3, 1},
		{50, 50, 1},
	}
	values := []float64{10, 10, 10, 2}

	res, err := CellDecluster(coords, values, vec3d.T{10, 10, 10})
	require.NoError(t, err)

	var sum float64
	for _, w := range res.Weights {
		sum += w
	}
	assert.InDelta(float64(len(values)), sum, 1e-9)

	// Clustered samples are downweighted relative to the isolated one.
	assert.Less(res.Weights[0], res.Weights[3])
	assert.Equal(res.Weights[0], res.Weights[1])

	// The weighted mean sits below the naive mean of 8 because the high
	// cluster counts as a single location.
	assert.InDelta(6.0, res.Mean, 1e-9)
	assert.Less(res.Mean, 8.0)
}

func TestCellDeclusterUniformData(t *testing.T) {
	assert := assert.New(t)

	values := []float64{1, 2, 3, 4}
	res, err := CellDecluster(squareCoords, values, vec3d.T{5, 5, 5})
	require.NoError(t, err)

	// One sample per cell: all weights 1 and the mean is unweighted.
	for _, w := range res.Weights {
		assert.InDelta(1.0, w, 1e-12)
	}
	assert.InDelta(2.5, res.Mean, 1e-12)
}

func TestOptimalCellSize(t *testing.T) {
	assert := assert.New(t)

	// A tight cluster of high grades next to scattered low grades: larger
	// cells fold the cluster into fewer occupied cells and pull the
	// declustered mean down.
	coords := []vec3d.T{
		{1, 1, 1}, {2, 2, 1}, {3, 3, 1}, {2, 1, 1},
		{50, 50, 1}, {90, 10, 1}, {10, 90, 1},
	}
	values := []float64{10, 11, 12, 10, 2, 3, 1}

	size, best, err := OptimalCellSize(coords, values, 2, 40, 10)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.GreaterOrEqual(size, 2.0)
	assert.LessOrEqual(size, 40.0)

	// The scan winner is no worse than the scan endpoints.
	lo, err := CellDecluster(coords, values, vec3d.T{2, 2, 2})
	require.NoError(t, err)
	hi, err := CellDecluster(coords, values, vec3d.T{40, 40, 40})
	require.NoError(t, err)
	assert.LessOrEqual(best.Mean, lo.Mean)
	assert.LessOrEqual(best.Mean, hi.Mean)
}

func TestOptimalCellSizeValidation(t *testing.T) {
	assert := assert.New(t)

	values := []float64{1, 2, 3, 4}

	_, _, err := OptimalCellSize(squareCoords, values, 0, 10, 5)
	assert.ErrorIs(err, ErrInvalidParameter)
	_, _, err = OptimalCellSize(squareCoords, values, 10, 10, 5)
	assert.ErrorIs(err, ErrInvalidParameter)
	_, _, err = OptimalCellSize(squareCoords, values, 1, 10, 1)
	assert.ErrorIs(err, ErrInvalidParameter)
}

func TestCellDeclusterValidation(t *testing.T) {
	assert := assert.New(t)

	_, err := CellDecluster(squareCoords, []float64{1, 2, 3, 4}, vec3d.T{10, 0, 10})
	assert.ErrorIs(err, ErrInvalidParameter)

	_, err = CellDecluster(nil, nil, vec3d.T{10, 10, 10})
	assert.ErrorIs(err, ErrInvalidParameter)
}
