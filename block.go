package geostat

import (
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// BlockGrid is a regular grid of blocks. A non-positive Size component marks
// that dimension as flat: blocks collapse onto the origin plane along it.
type BlockGrid struct {
	Origin vec3d.T
	Size   vec3d.T
	Counts [3]int
}

// NumBlocks returns the total number of blocks in the grid.
func (g BlockGrid) NumBlocks() int {
	n := 1
	for _, c := range g.Counts {
		if c > 0 {
			n *= c
		}
	}
	return n
}

func (g BlockGrid) validate() error {
	for d, c := range g.Counts {
		if c < 1 {
			return fmt.Errorf("%w: \"counts[%d]\" must be at least 1, got %d", ErrInvalidParameter, d, c)
		}
	}
	return nil
}

// Centers returns the block center coordinates in x-fastest order.
func (g BlockGrid) Centers() []vec3d.T {
	centers := make([]vec3d.T, 0, g.NumBlocks())
	for k := 0; k < g.Counts[2]; k++ {
		for j := 0; j < g.Counts[1]; j++ {
			for i := 0; i < g.Counts[0]; i++ {
				centers = append(centers, g.center(i, j, k))
			}
		}
	}
	return centers
}

func (g BlockGrid) center(i, j, k int) vec3d.T {
	var c vec3d.T
	for d, step := range [3]int{i, j, k} {
		if g.Size[d] > 0 {
			c[d] = g.Origin[d] + g.Size[d]*(float64(step)+0.5)
		} else {
			c[d] = g.Origin[d]
		}
	}
	return c
}

// discretize returns disc points per active dimension spread evenly inside a
// block centered at c. Flat dimensions contribute the center itself.
func (g BlockGrid) discretize(c vec3d.T, disc int) []vec3d.T {
	offsets := make([][]float64, 3)
	for d := 0; d < 3; d++ {
		if g.Size[d] <= 0 {
			offsets[d] = []float64{0}
			continue
		}
		offs := make([]float64, disc)
		for j := 0; j < disc; j++ {
			offs[j] = -g.Size[d]/2 + g.Size[d]*(float64(j)+0.5)/float64(disc)
		}
		offsets[d] = offs
	}

	pts := make([]vec3d.T, 0, len(offsets[0])*len(offsets[1])*len(offsets[2]))
	for _, oz := range offsets[2] {
		for _, oy := range offsets[1] {
			for _, ox := range offsets[0] {
				pts = append(pts, vec3d.T{c[0] + ox, c[1] + oy, c[2] + oz})
			}
		}
	}
	return pts
}

// BlockKriging estimates a block-support value for every block in the grid
// by ordinary kriging at disc^d discretization points inside each block and
// averaging. A block is NaN only when every one of its discretization points
// fails. The block variance is the mean of the point variances; the
// within-block covariance correction is not applied.
func BlockKriging(coords []vec3d.T, values []float64, grid BlockGrid, model *Model, disc int, opts EstimationOptions) ([]float64, []float64, error) {
	if err := validateSamples(coords, values); err != nil {
		return nil, nil, err
	}
	if err := validateBoundedModel(model); err != nil {
		return nil, nil, err
	}
	if err := grid.validate(); err != nil {
		return nil, nil, err
	}
	if disc < 1 {
		return nil, nil, fmt.Errorf("%w: \"discretization\" must be at least 1, got %d", ErrInvalidParameter, disc)
	}

	centers := grid.Centers()
	estimates := make([]float64, len(centers))
	variances := make([]float64, len(centers))
	forEachTarget(len(centers), opts.workers(), func(b int) {
		pts := grid.discretize(centers[b], disc)
		var estSum, varSum float64
		var n int
		for _, p := range pts {
			idx := Neighborhood(p, coords, opts.Search)
			if len(idx) == 0 {
				continue
			}
			sub, vals := gather(coords, values, idx)
			est, v, err := okNode(sub, vals, p, model)
			if err != nil || math.IsNaN(est) {
				continue
			}
			estSum += est
			varSum += v
			n++
		}
		if n == 0 {
			estimates[b], variances[b] = math.NaN(), math.NaN()
			return
		}
		estimates[b] = estSum / float64(n)
		variances[b] = varSum / float64(n)
	})
	return estimates, variances, nil
}

