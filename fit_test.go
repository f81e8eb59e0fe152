package geostat

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticVariogram evaluates a model on a regular lag grid and reports the
// bins as fully populated.
func syntheticVariogram(m *Model, lagDist float64, nLags int) *ExperimentalVariogram {
	vg := &ExperimentalVariogram{
		Lags:         make([]float64, nLags),
		Semivariance: make([]float64, nLags),
		NPairs:       make([]int, nLags),
	}
	for k := 0; k < nLags; k++ {
		h := lagDist * float64(k+1)
		vg.Lags[k] = h
		vg.Semivariance[k] = m.Predict(h)
		vg.NPairs[k] = 50
	}
	return vg
}

func TestFitManual(t *testing.T) {
	assert := assert.New(t)

	m, err := FitManual(Spherical, 1, 10, 80)
	require.NoError(t, err)
	assert.Equal(Spherical, m.Type)
	assert.Equal(1.0, m.Nugget)
	assert.Equal(10.0, m.Sill)
	assert.Equal(80.0, m.RangeA)
	assert.Zero(m.RMSE)

	_, err = FitManual(Spherical, 11, 10, 80)
	assert.ErrorIs(err, ErrInvalidParameter)
}

func TestFitWLSRecoversSpherical(t *testing.T) {
	assert := assert.New(t)

	truth, err := NewModel(Spherical, 0, 10, 80)
	require.NoError(t, err)
	vg := syntheticVariogram(truth, 10, 12)

	fitted, err := FitWLS(vg, Spherical)
	require.NoError(t, err)

	assert.InDelta(10.0, fitted.Sill, 0.5)
	assert.InDelta(80.0, fitted.RangeA, 8)
	assert.InDelta(0.0, fitted.Nugget, 0.5)
	assert.Less(fitted.RMSE, 0.2)
}

func TestFitWLSSkipsEmptyBins(t *testing.T) {
	assert := assert.New(t)

	truth, err := NewModel(Exponential, 1, 8, 60)
	require.NoError(t, err)
	vg := syntheticVariogram(truth, 10, 10)
	// Knock out two bins the way sparse data would.
	vg.Lags[3], vg.Semivariance[3], vg.NPairs[3] = math.NaN(), math.NaN(), 0
	vg.Lags[7], vg.Semivariance[7], vg.NPairs[7] = math.NaN(), math.NaN(), 0

	fitted, err := FitWLS(vg, Exponential)
	require.NoError(t, err)
	assert.InDelta(8.0, fitted.Sill, 1.0)
}

func TestFitWLSRejectsUnsupportedKind(t *testing.T) {
	assert := assert.New(t)

	truth, err := NewModel(Spherical, 0, 10, 80)
	require.NoError(t, err)
	vg := syntheticVariogram(truth, 10, 12)

	_, err = FitWLS(vg, Power)
	var unknown *UnknownModelError
	assert.True(errors.As(err, &unknown))

	_, err = FitWLS(nil, Spherical)
	assert.ErrorIs(err, ErrMissingParameter)
}

func TestFitWLSNeedsThreeBins(t *testing.T) {
	assert := assert.New(t)

	truth, err := NewModel(Spherical, 0, 10, 80)
	require.NoError(t, err)
	vg := syntheticVariogram(truth, 10, 2)

	_, err = FitWLS(vg, Spherical)
	assert.ErrorIs(err, ErrInvalidParameter)
}

func TestAutoFitPicksLowestRMSE(t *testing.T) {
	assert := assert.New(t)

	truth, err := NewModel(Gaussian, 0, 10, 80)
	require.NoError(t, err)
	vg := syntheticVariogram(truth, 10, 12)

	best, err := AutoFit(vg)
	require.NoError(t, err)

	for _, kind := range []ModelType{Spherical, Exponential, Gaussian} {
		fitted, err := FitWLS(vg, kind)
		require.NoError(t, err)
		assert.LessOrEqual(best.RMSE, fitted.RMSE)
	}
}
