package geostat

import (
	"math"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossValidateOrdinary(t *testing.T) {
	assert := assert.New(t)

	coords := []vec3d.T{
		{0, 0, 0}, {10, 0, 0}, {0, 10, 0}, {10, 10, 0}, {5, 5, 0},
	}
	values := []float64{1, 2, 3, 4, 2.5}

	report, err := CrossValidate(coords, values, testModel(t), MethodOrdinary, nil, EstimationOptions{})
	require.NoError(t, err)

	require.Len(t, report.Estimates, len(values))
	require.Len(t, report.Variances, len(values))
	require.Len(t, report.Errors, len(values))
	require.Len(t, report.StandardizedErrors, len(values))

	for i := range values {
		assert.InDelta(report.Estimates[i]-values[i], report.Errors[i], 1e-12)
		if report.Variances[i] > 0 {
			assert.InDelta(report.Errors[i]/math.Sqrt(report.Variances[i]), report.StandardizedErrors[i], 1e-12)
		}
	}
	assert.False(math.IsNaN(report.MeanError))
	assert.GreaterOrEqual(report.MeanSquaredError, 0.0)
}

func TestCrossValidateConstantField(t *testing.T) {
	assert := assert.New(t)

	values := []float64{7, 7, 7, 7}
	report, err := CrossValidate(squareCoords, values, testModel(t), MethodOrdinary, nil, EstimationOptions{})
	require.NoError(t, err)

	for i := range values {
		assert.InDelta(0.0, report.Errors[i], 1e-9)
	}
	assert.InDelta(0.0, report.MeanError, 1e-9)
	assert.InDelta(0.0, report.MeanSquaredError, 1e-9)
}

func TestCrossValidateSimpleNeedsMean(t *testing.T) {
	assert := assert.New(t)

	values := []float64{1, 2, 3, 4}

	_, err := CrossValidate(squareCoords, values, testModel(t), MethodSimple, nil, EstimationOptions{})
	assert.ErrorIs(err, ErrMissingParameter)

	mean := 2.5
	report, err := CrossValidate(squareCoords, values, testModel(t), MethodSimple, &mean, EstimationOptions{})
	require.NoError(t, err)
	assert.Len(report.Estimates, len(values))
}

func TestCrossValidateUnknownMethod(t *testing.T) {
	assert := assert.New(t)

	_, err := CrossValidate(squareCoords, []float64{1, 2, 3, 4}, testModel(t), "idw", nil, EstimationOptions{})
	assert.ErrorIs(err, ErrInvalidParameter)
}
