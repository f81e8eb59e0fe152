package geostat

import (
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

func degToRad(angle float64) float64 {
	return angle * math.Pi / 180
}

func pow2(x float64) float64 {
	return x * x
}

func pow3(x float64) float64 {
	return x * x * x
}

func sqDist(a, b vec3d.T) float64 {
	return pow2(a[0]-b[0]) + pow2(a[1]-b[1]) + pow2(a[2]-b[2])
}

func dist(a, b vec3d.T) float64 {
	return math.Sqrt(sqDist(a, b))
}

// nanMean averages the finite entries of xs, NaN if none.
func nanMean(xs []float64) float64 {
	var sum float64
	var n int
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
