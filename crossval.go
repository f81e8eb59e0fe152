package geostat

import (
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Cross-validation estimation methods.
const (
	MethodOrdinary = "ok"
	MethodSimple   = "sk"
)

// CrossValidationReport holds per-sample leave-one-out results plus summary
// statistics. Summary means skip NaN entries.
type CrossValidationReport struct {
	Estimates          []float64
	Variances          []float64
	Errors             []float64
	StandardizedErrors []float64
	MeanError          float64
	MeanSquaredError   float64
}

// CrossValidate re-estimates each sample from all the others and reports the
// estimation errors. method is MethodOrdinary or MethodSimple; simple kriging
// requires a global mean.
func CrossValidate(coords []vec3d.T, values []float64, model *Model, method string, globalMean *float64, opts EstimationOptions) (*CrossValidationReport, error) {
	if err := validateSamples(coords, values); err != nil {
		return nil, err
	}
	if err := validateMinLen(len(values), 2, "values"); err != nil {
		return nil, err
	}
	if err := validateBoundedModel(model); err != nil {
		return nil, err
	}
	switch method {
	case MethodOrdinary:
	case MethodSimple:
		if globalMean == nil {
			return nil, fmt.Errorf("%w: \"global_mean\" is required for simple kriging cross-validation", ErrMissingParameter)
		}
	default:
		return nil, fmt.Errorf("%w: unknown cross-validation method %q", ErrInvalidParameter, method)
	}

	n := len(values)
	report := &CrossValidationReport{
		Estimates:          make([]float64, n),
		Variances:          make([]float64, n),
		Errors:             make([]float64, n),
		StandardizedErrors: make([]float64, n),
	}

	forEachTarget(n, opts.workers(), func(i int) {
		rest := make([]vec3d.T, 0, n-1)
		restVals := make([]float64, 0, n-1)
		rest = append(rest, coords[:i]...)
		rest = append(rest, coords[i+1:]...)
		restVals = append(restVals, values[:i]...)
		restVals = append(restVals, values[i+1:]...)

		var est, v float64
		idx := Neighborhood(coords[i], rest, opts.Search)
		if len(idx) == 0 {
			if method == MethodSimple {
				est, v = *globalMean, model.TotalSill()
			} else {
				est, v = math.NaN(), math.NaN()
			}
		} else {
			pts, vals := gather(rest, restVals, idx)
			var err error
			switch method {
			case MethodSimple:
				est, v, err = skNode(pts, vals, coords[i], model, *globalMean)
				if err != nil {
					est, v = *globalMean, model.TotalSill()
				}
			default:
				est, v, err = okNode(pts, vals, coords[i], model)
				if err != nil {
					est, v = math.NaN(), math.NaN()
				}
			}
		}

		report.Estimates[i] = est
		report.Variances[i] = v
		report.Errors[i] = est - values[i]
		if v > 0 {
			report.StandardizedErrors[i] = report.Errors[i] / math.Sqrt(v)
		} else {
			report.StandardizedErrors[i] = math.NaN()
		}
	})

	report.MeanError = nanMean(report.Errors)
	sq := make([]float64, n)
	for i, e := range report.Errors {
		sq[i] = e * e
	}
	report.MeanSquaredError = nanMean(sq)
	return report, nil
}
