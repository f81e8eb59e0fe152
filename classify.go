package geostat

import (
	"fmt"
	"math"
)

// Resource confidence classes, ordered from highest to lowest confidence.
const (
	ClassMeasured  = 1
	ClassIndicated = 2
	ClassInferred  = 3
)

// VarianceThresholds splits kriging variances into confidence classes:
// variance at or below Measured classifies as measured, at or below
// Indicated as indicated, anything else as inferred.
type VarianceThresholds struct {
	Measured  float64
	Indicated float64
}

// ClassifyByKrigingVariance assigns a confidence class per block from its
// kriging variance. NaN variances classify as inferred.
func ClassifyByKrigingVariance(variances []float64, t VarianceThresholds) ([]int, error) {
	if err := validatePositive(t.Measured, "measured_threshold"); err != nil {
		return nil, err
	}
	if t.Indicated <= t.Measured {
		return nil, fmt.Errorf("%w: \"indicated_threshold\" must exceed \"measured_threshold\"", ErrInvalidParameter)
	}

	classes := make([]int, len(variances))
	for i, v := range variances {
		switch {
		case v <= t.Measured:
			classes[i] = ClassMeasured
		case v <= t.Indicated:
			classes[i] = ClassIndicated
		default:
			classes[i] = ClassInferred
		}
	}
	return classes, nil
}

// SearchPass is one rung of a search-pass classification ladder: a block
// informed by at least MinSamples samples spread over at least MinOctants
// octants meets the pass.
type SearchPass struct {
	MinSamples int
	MinOctants int
}

// ClassifyBySearchPass classifies blocks against a ladder of search passes
// ordered strictest first. A block meeting pass p gets class p+1; blocks
// meeting no pass, and blocks beyond the ladder length, classify as
// inferred.
func ClassifyBySearchPass(nSamples, nOctants []int, passes []SearchPass) ([]int, error) {
	if err := validateSameLen(len(nSamples), "n_samples", len(nOctants), "n_octants"); err != nil {
		return nil, err
	}
	if err := validateMinLen(len(passes), 1, "passes"); err != nil {
		return nil, err
	}

	classes := make([]int, len(nSamples))
	for i := range nSamples {
		class := ClassInferred
		// Relaxed passes apply first so a block lands on the
		// strictest pass it meets.
		for p := len(passes) - 1; p >= 0; p-- {
			if nSamples[i] >= passes[p].MinSamples && nOctants[i] >= passes[p].MinOctants {
				class = p + 1
			}
		}
		if class > ClassInferred {
			class = ClassInferred
		}
		classes[i] = class
	}
	return classes, nil
}

// SlopeOfRegression estimates the conditional-bias slope of a set of block
// estimates from the dispersion of the estimates relative to the true block
// dispersion: 1/(1 + CVkr²/CVtrue²). A slope near 1 indicates little
// conditional bias. The coefficient of variation is taken against the
// absolute mean, which must be nonzero.
func SlopeOfRegression(estimates []float64, trueCV float64) (float64, error) {
	if err := validateMinLen(len(estimates), 2, "estimates"); err != nil {
		return 0, err
	}
	if err := validatePositive(trueCV, "true_cv"); err != nil {
		return 0, err
	}

	mean := nanMean(estimates)
	if mean == 0 || math.IsNaN(mean) {
		return 0, fmt.Errorf("%w: \"estimates\" must have a nonzero mean", ErrInvalidParameter)
	}
	var ss float64
	var n int
	for _, e := range estimates {
		if math.IsNaN(e) {
			continue
		}
		ss += pow2(e - mean)
		n++
	}
	cvKr := math.Sqrt(ss/float64(n)) / math.Abs(mean)
	return 1 / (1 + pow2(cvKr)/pow2(trueCV)), nil
}
