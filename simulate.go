package geostat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/stat"
)

// SimulationOptions configures the per-node conditioning search of a
// sequential simulation.
type SimulationOptions struct {
	Search SearchOptions
}

// varianceFloor keeps the conditional draw well defined when the kriging
// variance collapses to zero or dips slightly negative from round-off.
const varianceFloor = 1e-10

func validateSimulation(nReal int, rng *rand.Rand) error {
	if err := validateCount(nReal, "realizations"); err != nil {
		return err
	}
	if rng == nil {
		return fmt.Errorf("%w: random source", ErrMissingParameter)
	}
	return nil
}

// SequentialGaussianSimulation draws nReal conditional realizations of the
// field at the grid nodes. Data are mapped to normal scores, each node is
// visited along a random path and assigned a draw from the simple kriging
// (mean 0) conditional distribution given data and previously simulated
// nodes, and realizations are back-transformed to original units. The model
// describes the normal-score variogram.
//
// All randomness comes from rng, so a fixed seed reproduces the full set of
// realizations. Realizations are generated one after another for that
// reason.
func SequentialGaussianSimulation(coords []vec3d.T, values []float64, grid []vec3d.T, model *Model, nReal int, rng *rand.Rand, opts SimulationOptions) ([][]float64, error) {
	if err := validateSamples(coords, values); err != nil {
		return nil, err
	}
	if err := validateBoundedModel(model); err != nil {
		return nil, err
	}
	if err := validateSimulation(nReal, rng); err != nil {
		return nil, err
	}

	scores, table, err := NormalScores(values)
	if err != nil {
		return nil, err
	}

	nData := len(coords)
	m := len(grid)
	realizations := make([][]float64, nReal)
	for r := 0; r < nReal; r++ {
		index := NewNeighborIndex(coords)
		cond := make([]vec3d.T, nData, nData+m)
		condScores := make([]float64, nData, nData+m)
		copy(cond, coords)
		copy(condScores, scores)

		sim := make([]float64, m)
		for _, node := range rng.Perm(m) {
			target := grid[node]
			var est, v float64
			idx := index.Select(target, opts.Search)
			if len(idx) == 0 {
				est, v = 0, model.TotalSill()
			} else {
				pts, vals := gather(cond, condScores, idx)
				est, v, err = skNode(pts, vals, target, model, 0)
				if err != nil {
					est, v = 0, model.TotalSill()
				}
			}
			if !(v > varianceFloor) {
				v = varianceFloor
			}
			s := est + rng.NormFloat64()*math.Sqrt(v)
			sim[node] = s

			index.Insert(target)
			cond = append(cond, target)
			condScores = append(condScores, s)
		}

		back, err := BackTransform(sim, table)
		if err != nil {
			return nil, err
		}
		realizations[r] = back
	}
	return realizations, nil
}

// SequentialIndicatorSimulation draws nReal categorical realizations at the
// grid nodes. indicators holds the 0/1 coding of the data per cutoff, as
// produced by IndicatorTransform. At each node the conditional CDF is
// estimated by ordinary kriging per cutoff, clamped to [0, 1] and forced
// non-decreasing across cutoffs, converted to a probability mass over the
// len(cutoffs)+1 classes, and sampled. A node whose CDF is entirely
// undefined falls back to a uniform draw. The result is indexed
// [realization][node] with classes in [0, len(cutoffs)].
func SequentialIndicatorSimulation(coords []vec3d.T, indicators [][]float64, grid []vec3d.T, models []*Model, cutoffs []float64, nReal int, rng *rand.Rand, opts SimulationOptions) ([][]int, error) {
	if err := validateSameLen(len(coords), "coords", len(indicators), "indicators"); err != nil {
		return nil, err
	}
	if err := validateMinLen(len(coords), 1, "coords"); err != nil {
		return nil, err
	}
	if err := validateSameLen(len(cutoffs), "cutoffs", len(models), "variogram_models"); err != nil {
		return nil, err
	}
	if err := validateMinLen(len(cutoffs), 1, "cutoffs"); err != nil {
		return nil, err
	}
	for i, row := range indicators {
		if len(row) != len(cutoffs) {
			return nil, fmt.Errorf("%w: \"indicators[%d]\" has %d entries, want %d", ErrInvalidParameter, i, len(row), len(cutoffs))
		}
	}
	for _, m := range models {
		if err := validateBoundedModel(m); err != nil {
			return nil, err
		}
	}
	if err := validateSimulation(nReal, rng); err != nil {
		return nil, err
	}

	nData := len(coords)
	nCut := len(cutoffs)
	m := len(grid)
	realizations := make([][]int, nReal)
	for r := 0; r < nReal; r++ {
		index := NewNeighborIndex(coords)
		cond := make([]vec3d.T, nData, nData+m)
		copy(cond, coords)
		condInd := make([][]float64, nData, nData+m)
		copy(condInd, indicators)

		cats := make([]int, m)
		for _, node := range rng.Perm(m) {
			target := grid[node]
			idx := index.Select(target, opts.Search)

			cdf := make([]float64, nCut)
			if len(idx) == 0 {
				for k := range cdf {
					cdf[k] = math.NaN()
				}
			} else {
				pts := make([]vec3d.T, len(idx))
				for i, j := range idx {
					pts[i] = cond[j]
				}
				vals := make([]float64, len(idx))
				for k := 0; k < nCut; k++ {
					for i, j := range idx {
						vals[i] = condInd[j][k]
					}
					est, _, err := okNode(pts, vals, target, models[k])
					if err != nil {
						est = math.NaN()
					}
					cdf[k] = clamp01(est)
				}
			}

			cat := sampleClass(cdf, rng)
			cats[node] = cat

			row := make([]float64, nCut)
			for k := range row {
				if cat <= k {
					row[k] = 1
				}
			}
			index.Insert(target)
			cond = append(cond, target)
			condInd = append(condInd, row)
		}
		realizations[r] = cats
	}
	return realizations, nil
}

// sampleClass turns a per-cutoff CDF into a class draw. The CDF is forced
// non-decreasing, differenced into a mass over len(cdf)+1 classes, clipped
// and renormalized; an all-NaN or degenerate mass becomes uniform.
func sampleClass(cdf []float64, rng *rand.Rand) int {
	nCut := len(cdf)
	for k := 1; k < nCut; k++ {
		if cdf[k] < cdf[k-1] {
			cdf[k] = cdf[k-1]
		}
	}

	pmf := make([]float64, nCut+1)
	prev := 0.0
	for k := 0; k < nCut; k++ {
		pmf[k] = cdf[k] - prev
		prev = cdf[k]
	}
	pmf[nCut] = 1 - prev

	var sum float64
	valid := true
	for k, p := range pmf {
		if math.IsNaN(p) {
			valid = false
			break
		}
		if p < 0 {
			pmf[k] = 0
			p = 0
		}
		sum += p
	}
	if !valid || sum <= 0 {
		for k := range pmf {
			pmf[k] = 1 / float64(nCut+1)
		}
		sum = 1
	}

	u := rng.Float64() * sum
	var cum float64
	for k, p := range pmf {
		cum += p
		if u < cum {
			return k
		}
	}
	return nCut
}

// RealizationStatistics summarizes an ensemble of realizations node by node.
type RealizationStatistics struct {
	EType    []float64
	Variance []float64
	P10      []float64
	P50      []float64
	P90      []float64
}

// SimulationStatistics computes per-node summary statistics across the
// realizations returned by SequentialGaussianSimulation.
func SimulationStatistics(realizations [][]float64) (*RealizationStatistics, error) {
	if err := validateMinLen(len(realizations), 1, "realizations"); err != nil {
		return nil, err
	}
	m := len(realizations[0])
	for r, nodes := range realizations {
		if len(nodes) != m {
			return nil, fmt.Errorf("%w: \"realizations[%d]\" has %d nodes, want %d", ErrInvalidParameter, r, len(nodes), m)
		}
	}

	out := &RealizationStatistics{
		EType:    make([]float64, m),
		Variance: make([]float64, m),
		P10:      make([]float64, m),
		P50:      make([]float64, m),
		P90:      make([]float64, m),
	}
	column := make([]float64, len(realizations))
	for i := 0; i < m; i++ {
		for r := range realizations {
			column[r] = realizations[r][i]
		}
		out.EType[i] = stat.Mean(column, nil)
		out.Variance[i] = stat.Variance(column, nil)
		sorted := append([]float64(nil), column...)
		sort.Float64s(sorted)
		out.P10[i] = stat.Quantile(0.1, stat.Empirical, sorted, nil)
		out.P50[i] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		out.P90[i] = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}
	return out, nil
}
