package geostat

import (
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// ExperimentalVariogram holds binned lag/semivariance estimates. A bin with
// zero pairs carries NaN for both its lag center and its semivariance.
type ExperimentalVariogram struct {
	Lags         []float64
	Semivariance []float64
	NPairs       []int
}

// BinOptions controls lag binning for experimental variograms.
type BinOptions struct {
	// NLags is the number of lag bins (default 10).
	NLags int
	// LagDist is the lag spacing. Zero selects max pair distance / (NLags+1).
	LagDist float64
	// LagTol is the bin half-window as a fraction of LagDist (default 0.5).
	LagTol float64
}

func (o BinOptions) normalized() BinOptions {
	if o.NLags == 0 {
		o.NLags = 10
	}
	if o.LagTol == 0 {
		o.LagTol = 0.5
	}
	return o
}

// pairSet is the flattened upper triangle of a sample set: one distance and
// one half-squared-increment (or cross-increment) per unordered pair.
type pairSet struct {
	dists []float64
	semis []float64
}

func allPairs(coords []vec3d.T, values []float64) pairSet {
	n := len(values)
	ps := pairSet{
		dists: make([]float64, 0, n*(n-1)/2),
		semis: make([]float64, 0, n*(n-1)/2),
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ps.dists = append(ps.dists, dist(coords[i], coords[j]))
			ps.semis = append(ps.semis, 0.5*pow2(values[i]-values[j]))
		}
	}
	return ps
}

func maxDist(dists []float64) float64 {
	var m float64
	for _, d := range dists {
		if d > m {
			m = d
		}
	}
	return m
}

// binPairs assigns pairs to lag bins centered at (k+1)·lag with half-window
// tol·lag. The reported lag of a populated bin is the mean pair distance.
func binPairs(ps pairSet, opts BinOptions) (*ExperimentalVariogram, error) {
	opts = opts.normalized()
	if err := validateCount(opts.NLags, "n_lags"); err != nil {
		return nil, err
	}
	lag := opts.LagDist
	if lag == 0 {
		lag = maxDist(ps.dists) / float64(opts.NLags+1)
	}
	if err := validatePositive(lag, "lag_dist"); err != nil {
		return nil, err
	}

	vg := &ExperimentalVariogram{
		Lags:         make([]float64, opts.NLags),
		Semivariance: make([]float64, opts.NLags),
		NPairs:       make([]int, opts.NLags),
	}
	for k := 0; k < opts.NLags; k++ {
		center := float64(k+1) * lag
		low := center - opts.LagTol*lag
		high := center + opts.LagTol*lag

		var sumDist, sumSemi float64
		var count int
		for p, d := range ps.dists {
			if d >= low && d < high {
				sumDist += d
				sumSemi += ps.semis[p]
				count++
			}
		}
		if count > 0 {
			vg.Lags[k] = sumDist / float64(count)
			vg.Semivariance[k] = sumSemi / float64(count)
		} else {
			vg.Lags[k] = math.NaN()
			vg.Semivariance[k] = math.NaN()
		}
		vg.NPairs[k] = count
	}
	return vg, nil
}

// Omnidirectional computes the experimental semivariogram over all sample
// pairs regardless of direction.
func Omnidirectional(coords []vec3d.T, values []float64, opts BinOptions) (*ExperimentalVariogram, error) {
	if err := validateSameLen(len(coords), "coords", len(values), "values"); err != nil {
		return nil, err
	}
	if err := validateMinLen(len(values), 2, "values"); err != nil {
		return nil, err
	}
	return binPairs(allPairs(coords, values), opts)
}

// DirectionalOptions restricts pairs to a direction cone.
type DirectionalOptions struct {
	// AngleTolerance is the angular half-window in degrees (default 22.5).
	AngleTolerance float64
	// Bandwidth is the maximum perpendicular distance from the direction
	// axis. Zero disables the bandwidth filter.
	Bandwidth float64
	BinOptions
}

// Directional computes an experimental semivariogram restricted to pairs
// whose connecting vector lies within an angular tolerance of the azimuth
// (degrees clockwise from north; 0 = N, 90 = E). Direction filtering uses
// the x/y plane only.
func Directional(coords []vec3d.T, values []float64, azimuth float64, opts DirectionalOptions) (*ExperimentalVariogram, error) {
	if err := validateSameLen(len(coords), "coords", len(values), "values"); err != nil {
		return nil, err
	}
	if err := validateMinLen(len(values), 2, "values"); err != nil {
		return nil, err
	}
	if opts.AngleTolerance == 0 {
		opts.AngleTolerance = 22.5
	}
	if opts.Bandwidth < 0 {
		return nil, validateNonNegative(opts.Bandwidth, "bandwidth")
	}

	azRad := degToRad(azimuth)
	dirX, dirY := math.Sin(azRad), math.Cos(azRad)
	cosTol := math.Cos(degToRad(opts.AngleTolerance))

	n := len(values)
	var ps pairSet
	var allDists []float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := coords[j][0] - coords[i][0]
			dy := coords[j][1] - coords[i][1]
			d := math.Hypot(dx, dy)
			allDists = append(allDists, d)

			denom := d
			if denom == 0 {
				denom = 1
			}
			// Pairs count in both directions along the axis.
			cosAngle := math.Abs(dx*dirX+dy*dirY) / denom
			if cosAngle < cosTol {
				continue
			}
			if opts.Bandwidth > 0 {
				perp := math.Abs(-dx*dirY + dy*dirX)
				if perp > opts.Bandwidth {
					continue
				}
			}
			ps.dists = append(ps.dists, d)
			ps.semis = append(ps.semis, 0.5*pow2(values[i]-values[j]))
		}
	}

	opts.BinOptions = opts.BinOptions.normalized()
	if opts.LagDist == 0 {
		// Auto lag from the surviving pairs, falling back to all pairs when
		// the cone is empty so the error surfaces as empty bins, not a bad
		// lag width.
		ref := ps.dists
		if len(ref) == 0 {
			ref = allDists
		}
		opts.LagDist = maxDist(ref) / float64(opts.NLags+1)
	}
	return binPairs(ps, opts.BinOptions)
}

// VariogramCloud is the unbinned set of pair distances and half squared
// increments.
type VariogramCloud struct {
	Distances    []float64
	Semivariance []float64
}

// NPairs returns the number of pairs in the cloud.
func (c *VariogramCloud) NPairs() int { return len(c.Distances) }

// Cloud emits every pair's (distance, half squared difference). A positive
// maxLag drops pairs farther apart than maxLag; zero keeps all pairs.
func Cloud(coords []vec3d.T, values []float64, maxLag float64) (*VariogramCloud, error) {
	if err := validateSameLen(len(coords), "coords", len(values), "values"); err != nil {
		return nil, err
	}
	if err := validateMinLen(len(values), 2, "values"); err != nil {
		return nil, err
	}
	if maxLag < 0 {
		return nil, validateNonNegative(maxLag, "max_lag")
	}
	ps := allPairs(coords, values)
	cloud := &VariogramCloud{}
	for i, d := range ps.dists {
		if maxLag > 0 && d > maxLag {
			continue
		}
		cloud.Distances = append(cloud.Distances, d)
		cloud.Semivariance = append(cloud.Semivariance, ps.semis[i])
	}
	return cloud, nil
}

// Cross computes the cross-variogram of two co-located variables:
// γ12(h) = mean of ½(z1ᵢ−z1ⱼ)(z2ᵢ−z2ⱼ) per lag bin.
func Cross(coords []vec3d.T, values1, values2 []float64, opts BinOptions) (*ExperimentalVariogram, error) {
	if err := validateSameLen(len(coords), "coords", len(values1), "values1"); err != nil {
		return nil, err
	}
	if err := validateSameLen(len(values1), "values1", len(values2), "values2"); err != nil {
		return nil, err
	}
	if err := validateMinLen(len(values1), 2, "values1"); err != nil {
		return nil, err
	}
	n := len(values1)
	var ps pairSet
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ps.dists = append(ps.dists, dist(coords[i], coords[j]))
			ps.semis = append(ps.semis, 0.5*(values1[i]-values1[j])*(values2[i]-values2[j]))
		}
	}
	return binPairs(ps, opts)
}
