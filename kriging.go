package geostat

import (
	"fmt"
	"math"
	"runtime"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// EstimationOptions configures a batch kriging run.
type EstimationOptions struct {
	Search SearchOptions
	// Workers bounds the per-target fan-out; 0 uses GOMAXPROCS. Targets are
	// mutually independent, so results do not depend on worker count.
	Workers int
}

func (o EstimationOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// EstimationResult is a single kriging outcome.
type EstimationResult struct {
	Estimate float64
	Variance float64
}

func validateSamples(coords []vec3d.T, values []float64) error {
	if err := validateSameLen(len(coords), "coords", len(values), "values"); err != nil {
		return err
	}
	return validateMinLen(len(values), 1, "values")
}

func validateBoundedModel(model *Model) error {
	if model == nil {
		return fmt.Errorf("%w: variogram model", ErrMissingParameter)
	}
	if !model.Bounded() {
		return fmt.Errorf("%w: kriging requires a bounded variogram model, got %q", ErrInvalidParameter, string(model.Type))
	}
	return nil
}

func covMatrix(model *Model, pts []vec3d.T) *mat.SymDense {
	n := len(pts)
	c := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c.SetSym(i, j, model.Covariance(dist(pts[i], pts[j])))
		}
	}
	return c
}

func covVector(model *Model, pts []vec3d.T, target vec3d.T) []float64 {
	c0 := make([]float64, len(pts))
	for i := range pts {
		c0[i] = model.Covariance(dist(pts[i], target))
	}
	return c0
}

func gather(coords []vec3d.T, values []float64, idx []int) ([]vec3d.T, []float64) {
	pts := make([]vec3d.T, len(idx))
	vals := make([]float64, len(idx))
	for i, j := range idx {
		pts[i] = coords[j]
		vals[i] = values[j]
	}
	return pts, vals
}

// okNode solves the ordinary kriging system for one target against the given
// neighborhood. The covariance system is augmented with a unit row/column and
// zero corner so the weights sum to 1.
func okNode(pts []vec3d.T, vals []float64, target vec3d.T, model *Model) (float64, float64, error) {
	n := len(pts)
	c0 := covVector(model, pts, target)

	k := mat.NewDense(n+1, n+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k.Set(i, j, model.Covariance(dist(pts[i], pts[j])))
		}
		k.Set(i, n, 1)
		k.Set(n, i, 1)
	}
	rhs := mat.NewVecDense(n+1, append(append(make([]float64, 0, n+1), c0...), 1))

	var sol mat.VecDense
	if err := sol.SolveVec(k, rhs); err != nil {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}

	var est, wc float64
	for i := 0; i < n; i++ {
		est += sol.AtVec(i) * vals[i]
		wc += sol.AtVec(i) * c0[i]
	}
	mu := sol.AtVec(n)
	return est, model.TotalSill() - wc - mu, nil
}

// skNode solves the unaugmented simple kriging system on mean-removed
// values. Cholesky on the SPD covariance first, dense solve as the fallback.
func skNode(pts []vec3d.T, vals []float64, target vec3d.T, model *Model, mean float64) (float64, float64, error) {
	n := len(pts)
	c0 := covVector(model, pts, target)
	sym := covMatrix(model, pts)
	rhs := mat.NewVecDense(n, append(make([]float64, 0, n), c0...))

	var w mat.VecDense
	var chol mat.Cholesky
	if chol.Factorize(sym) {
		if err := chol.SolveVecTo(&w, rhs); err != nil {
			return math.NaN(), math.NaN(), fmt.Errorf("%w: %v", ErrSingularSystem, err)
		}
	} else {
		var dense mat.Dense
		dense.CloneFrom(sym)
		if err := w.SolveVec(&dense, rhs); err != nil {
			return math.NaN(), math.NaN(), fmt.Errorf("%w: %v", ErrSingularSystem, err)
		}
	}

	est := mean
	var wc float64
	for i := 0; i < n; i++ {
		est += w.AtVec(i) * (vals[i] - mean)
		wc += w.AtVec(i) * c0[i]
	}
	return est, model.TotalSill() - wc, nil
}

// driftMatrix evaluates the polynomial drift basis at pts: a constant
// column, then x and y for order >= 1, then x², y², xy for order >= 2.
// Drift uses the first two coordinate axes.
func driftMatrix(pts []vec3d.T, order int) [][]float64 {
	rows := make([][]float64, len(pts))
	for i, p := range pts {
		row := []float64{1}
		if order >= 1 {
			row = append(row, p[0], p[1])
		}
		if order >= 2 {
			row = append(row, pow2(p[0]), pow2(p[1]), p[0]*p[1])
		}
		rows[i] = row
	}
	return rows
}

// ukNode solves the universal kriging system with a polynomial drift block.
func ukNode(pts []vec3d.T, vals []float64, target vec3d.T, model *Model, order int) (float64, float64, error) {
	n := len(pts)
	c0 := covVector(model, pts, target)
	f := driftMatrix(pts, order)
	f0 := driftMatrix([]vec3d.T{target}, order)[0]
	p := len(f0)

	size := n + p
	k := mat.NewDense(size, size, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k.Set(i, j, model.Covariance(dist(pts[i], pts[j])))
		}
		for j := 0; j < p; j++ {
			k.Set(i, n+j, f[i][j])
			k.Set(n+j, i, f[i][j])
		}
	}
	rhsData := make([]float64, 0, size)
	rhsData = append(rhsData, c0...)
	rhsData = append(rhsData, f0...)
	rhs := mat.NewVecDense(size, rhsData)

	var sol mat.VecDense
	if err := sol.SolveVec(k, rhs); err != nil {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}

	var est, wc, lf float64
	for i := 0; i < n; i++ {
		est += sol.AtVec(i) * vals[i]
		wc += sol.AtVec(i) * c0[i]
	}
	for j := 0; j < p; j++ {
		lf += sol.AtVec(n+j) * f0[j]
	}
	return est, model.TotalSill() - wc - lf, nil
}

// forEachTarget fans the per-target closure out over a bounded worker pool.
// fn must only write state owned by its own index.
func forEachTarget(nTargets, workers int, fn func(i int)) {
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := 0; i < nTargets; i++ {
		i := i
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// OrdinaryKriging estimates values at the target locations with weights
// constrained to sum to 1, so no global mean is required. Targets are
// processed independently; an empty neighborhood or a degenerate system
// yields (NaN, NaN) for that target without aborting the batch.
func OrdinaryKriging(coords []vec3d.T, values []float64, targets []vec3d.T, model *Model, opts EstimationOptions) ([]float64, []float64, error) {
	if err := validateSamples(coords, values); err != nil {
		return nil, nil, err
	}
	if err := validateBoundedModel(model); err != nil {
		return nil, nil, err
	}

	estimates := make([]float64, len(targets))
	variances := make([]float64, len(targets))
	forEachTarget(len(targets), opts.workers(), func(i int) {
		idx := Neighborhood(targets[i], coords, opts.Search)
		if len(idx) == 0 {
			estimates[i], variances[i] = math.NaN(), math.NaN()
			return
		}
		pts, vals := gather(coords, values, idx)
		est, v, err := okNode(pts, vals, targets[i], model)
		if err != nil {
			estimates[i], variances[i] = math.NaN(), math.NaN()
			return
		}
		estimates[i], variances[i] = est, v
	})
	return estimates, variances, nil
}

// OrdinaryKrigingAt estimates at a single location. Unlike the batch form it
// does not encode failure as NaN: an empty neighborhood returns
// ErrNoNeighbors and a degenerate system returns ErrSingularSystem.
func OrdinaryKrigingAt(coords []vec3d.T, values []float64, target vec3d.T, model *Model, opts SearchOptions) (*EstimationResult, error) {
	if err := validateSamples(coords, values); err != nil {
		return nil, err
	}
	if err := validateBoundedModel(model); err != nil {
		return nil, err
	}
	idx := Neighborhood(target, coords, opts)
	if len(idx) == 0 {
		return nil, ErrNoNeighbors
	}
	pts, vals := gather(coords, values, idx)
	est, v, err := okNode(pts, vals, target, model)
	if err != nil {
		return nil, err
	}
	return &EstimationResult{Estimate: est, Variance: v}, nil
}

// SimpleKriging estimates with a known global mean. An empty neighborhood or
// a degenerate system falls back to the prior (mean, sill) for that target.
// For identical inputs the SK variance never exceeds the OK variance.
func SimpleKriging(coords []vec3d.T, values []float64, targets []vec3d.T, model *Model, globalMean float64, opts EstimationOptions) ([]float64, []float64, error) {
	if err := validateSamples(coords, values); err != nil {
		return nil, nil, err
	}
	if err := validateBoundedModel(model); err != nil {
		return nil, nil, err
	}

	estimates := make([]float64, len(targets))
	variances := make([]float64, len(targets))
	forEachTarget(len(targets), opts.workers(), func(i int) {
		idx := Neighborhood(targets[i], coords, opts.Search)
		if len(idx) == 0 {
			estimates[i], variances[i] = globalMean, model.TotalSill()
			return
		}
		pts, vals := gather(coords, values, idx)
		est, v, err := skNode(pts, vals, targets[i], model, globalMean)
		if err != nil {
			estimates[i], variances[i] = globalMean, model.TotalSill()
			return
		}
		estimates[i], variances[i] = est, v
	})
	return estimates, variances, nil
}

// UniversalKriging augments the kriging system with polynomial drift terms
// of the given order: 0 (constant, identical to OK), 1 (linear), or
// 2 (quadratic with xy cross term).
func UniversalKriging(coords []vec3d.T, values []float64, targets []vec3d.T, model *Model, driftOrder int, opts EstimationOptions) ([]float64, []float64, error) {
	if err := validateSamples(coords, values); err != nil {
		return nil, nil, err
	}
	if err := validateBoundedModel(model); err != nil {
		return nil, nil, err
	}
	if driftOrder < 0 || driftOrder > 2 {
		return nil, nil, fmt.Errorf("%w: \"drift_order\" must be 0, 1, or 2, got %d", ErrInvalidParameter, driftOrder)
	}

	estimates := make([]float64, len(targets))
	variances := make([]float64, len(targets))
	forEachTarget(len(targets), opts.workers(), func(i int) {
		idx := Neighborhood(targets[i], coords, opts.Search)
		if len(idx) == 0 {
			estimates[i], variances[i] = math.NaN(), math.NaN()
			return
		}
		pts, vals := gather(coords, values, idx)
		est, v, err := ukNode(pts, vals, targets[i], model, driftOrder)
		if err != nil {
			estimates[i], variances[i] = math.NaN(), math.NaN()
			return
		}
		estimates[i], variances[i] = est, v
	})
	return estimates, variances, nil
}

// IndicatorKriging runs ordinary kriging independently per cutoff on the
// 0/1 indicator transform of values and clips each probability to [0, 1].
// The result is indexed [target][cutoff]. Cross-cutoff monotonicity is the
// caller's responsibility.
func IndicatorKriging(coords []vec3d.T, values []float64, targets []vec3d.T, cutoffs []float64, models []*Model, opts EstimationOptions) ([][]float64, error) {
	if err := validateSamples(coords, values); err != nil {
		return nil, err
	}
	if err := validateSameLen(len(cutoffs), "cutoffs", len(models), "variogram_models"); err != nil {
		return nil, err
	}
	if err := validateMinLen(len(cutoffs), 1, "cutoffs"); err != nil {
		return nil, err
	}

	indicators := IndicatorTransform(values, cutoffs)
	probs := make([][]float64, len(targets))
	for i := range probs {
		probs[i] = make([]float64, len(cutoffs))
	}
	for k := range cutoffs {
		column := make([]float64, len(values))
		for i := range values {
			column[i] = indicators[i][k]
		}
		est, _, err := OrdinaryKriging(coords, column, targets, models[k], opts)
		if err != nil {
			return nil, err
		}
		for i := range targets {
			probs[i][k] = clamp01(est[i])
		}
	}
	return probs, nil
}

// clamp01 clips to [0, 1], passing NaN through unchanged.
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
