package geostat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// FitManual builds a variogram model directly from the given parameters.
// No fitting is performed; the model reports an RMSE of 0.
func FitManual(kind ModelType, nugget, sill, rangeA float64) (*Model, error) {
	return NewModel(kind, nugget, sill, rangeA)
}

// rawPredict evaluates a bounded family without constructing a Model, so the
// optimizer can probe parameter combinations that would fail validation.
func rawPredict(kind ModelType, h, nugget, sill, rangeA float64) float64 {
	if h == 0 {
		return 0
	}
	switch kind {
	case Spherical:
		if h >= rangeA {
			return sill
		}
		hr := h / rangeA
		return nugget + (sill-nugget)*(1.5*hr-0.5*pow3(hr))
	case Exponential:
		return nugget + (sill-nugget)*(1-math.Exp(-3*h/rangeA))
	case Gaussian:
		return nugget + (sill-nugget)*(1-math.Exp(-3*pow2(h/rangeA)))
	}
	return math.NaN()
}

func clampFitParams(x []float64) (nugget, sill, rangeA float64) {
	nugget = math.Max(x[0], 0)
	sill = math.Max(x[1], nugget+1e-10)
	rangeA = math.Max(x[2], 1e-10)
	return
}

// FitWLS fits nugget, sill, and range of a fixed model kind to experimental
// bins by weighted nonlinear least squares. Bins are weighted by Cressie's
// nᵢ/γ̂(hᵢ)² using the per-bin pair counts; empty (NaN) bins are skipped.
// At least 3 populated bins are required.
func FitWLS(vg *ExperimentalVariogram, kind ModelType) (*Model, error) {
	switch kind {
	case Spherical, Exponential, Gaussian:
	default:
		return nil, &UnknownModelError{Kind: kind}
	}
	if vg == nil {
		return nil, fmt.Errorf("%w: experimental variogram", ErrMissingParameter)
	}

	var lags, sv, npairs []float64
	for k := range vg.Lags {
		if math.IsNaN(vg.Lags[k]) || math.IsNaN(vg.Semivariance[k]) {
			continue
		}
		lags = append(lags, vg.Lags[k])
		sv = append(sv, vg.Semivariance[k])
		npairs = append(npairs, float64(vg.NPairs[k]))
	}
	if len(lags) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 valid lag bins for fitting, got %d", ErrInvalidParameter, len(lags))
	}

	// Initial guesses: half the first-bin semivariance as nugget, the peak
	// as sill, and the first lag reaching 95% of it as range.
	nugget0 := math.Max(0, sv[0]*0.5)
	var sill0 float64
	for _, g := range sv {
		if g > sill0 {
			sill0 = g
		}
	}
	range0 := lags[len(lags)-1]
	for i, g := range sv {
		if g >= 0.95*sill0 {
			range0 = lags[i]
			break
		}
	}

	objective := func(x []float64) float64 {
		nug, sil, rng := clampFitParams(x)
		var sse float64
		for i, h := range lags {
			pred := rawPredict(kind, h, nug, sil, rng)
			w := 1.0
			if pred > 0 {
				w = npairs[i] / pow2(pred)
			}
			sse += w * pow2(sv[i]-pred)
		}
		return sse
	}

	problem := optimize.Problem{Func: objective}
	result, err := optimize.Minimize(problem, []float64{nugget0, sill0, range0}, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("geostat: variogram fit failed: %w", err)
	}

	nugget, sill, rangeA := clampFitParams(result.X)
	model, err := NewModel(kind, nugget, sill, rangeA)
	if err != nil {
		return nil, err
	}

	var sse float64
	for i, h := range lags {
		sse += pow2(sv[i] - model.Predict(h))
	}
	model.RMSE = math.Sqrt(sse / float64(len(lags)))
	return model, nil
}

// AutoFit fits each candidate kind by WLS and returns the model with the
// lowest RMSE. With no candidates it tries spherical, exponential, and
// gaussian. Kinds that fail to fit are skipped; every kind failing is an
// error.
func AutoFit(vg *ExperimentalVariogram, kinds ...ModelType) (*Model, error) {
	if len(kinds) == 0 {
		kinds = []ModelType{Spherical, Exponential, Gaussian}
	}
	var best *Model
	var lastErr error
	for _, kind := range kinds {
		fitted, err := FitWLS(vg, kind)
		if err != nil {
			lastErr = err
			continue
		}
		if best == nil || fitted.RMSE < best.RMSE {
			best = fitted
		}
	}
	if best == nil {
		return nil, fmt.Errorf("geostat: all model fits failed: %w", lastErr)
	}
	return best, nil
}
