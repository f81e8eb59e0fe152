package geostat

import (
	"sort"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// SearchOptions bounds a neighbor search. Zero values lift the corresponding
// bound.
type SearchOptions struct {
	// Radius is the maximum search distance; 0 means unlimited.
	Radius float64
	// MaxPoints caps the neighborhood at the nearest MaxPoints candidates;
	// 0 means unlimited.
	MaxPoints int
}

// Neighborhood returns the indices of the known points eligible to inform an
// estimate at target, nearest first. An empty result is a valid outcome and
// is left to the caller to interpret.
func Neighborhood(target vec3d.T, coords []vec3d.T, opts SearchOptions) []int {
	type candidate struct {
		idx int
		d   float64
	}
	cands := make([]candidate, 0, len(coords))
	r2 := opts.Radius * opts.Radius
	for i := range coords {
		d2 := sqDist(target, coords[i])
		if opts.Radius > 0 && d2 > r2 {
			continue
		}
		cands = append(cands, candidate{idx: i, d: d2})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].d < cands[j].d })
	if opts.MaxPoints > 0 && len(cands) > opts.MaxPoints {
		cands = cands[:opts.MaxPoints]
	}
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.idx
	}
	return out
}

// samplePoint is a kd-tree node carrying its index into the owning value
// slice. Distances are squared Euclidean.
type samplePoint struct {
	pos vec3d.T
	idx int
}

func (p samplePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(samplePoint)
	return p.pos[d] - q.pos[d]
}

func (p samplePoint) Dims() int { return 3 }

func (p samplePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(samplePoint)
	return sqDist(p.pos, q.pos)
}

type samplePoints []samplePoint

func (p samplePoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p samplePoints) Len() int                              { return len(p) }
func (p samplePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p samplePoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(samplePlane{samplePoints: p, Dim: d}, kdtree.MedianOfRandoms(samplePlane{samplePoints: p, Dim: d}, 100))
}

type samplePlane struct {
	samplePoints
	kdtree.Dim
}

func (p samplePlane) Less(i, j int) bool {
	return p.samplePoints[i].pos[p.Dim] < p.samplePoints[j].pos[p.Dim]
}

func (p samplePlane) Slice(start, end int) kdtree.SortSlicer {
	return samplePlane{samplePoints: p.samplePoints[start:end], Dim: p.Dim}
}

func (p samplePlane) Swap(i, j int) {
	p.samplePoints[i], p.samplePoints[j] = p.samplePoints[j], p.samplePoints[i]
}

// NeighborIndex is a spatial index over a point set that supports appending
// points, so a sequential simulation can keep its growing conditioning set
// searchable without rescanning all prior nodes.
type NeighborIndex struct {
	tree *kdtree.Tree
	n    int
}

// NewNeighborIndex builds an index over the given coordinates. Index i in
// query results refers to coords[i] and to points added later in Insert
// order.
func NewNeighborIndex(coords []vec3d.T) *NeighborIndex {
	pts := make(samplePoints, len(coords))
	for i, c := range coords {
		pts[i] = samplePoint{pos: c, idx: i}
	}
	return &NeighborIndex{tree: kdtree.New(pts, true), n: len(coords)}
}

// Insert appends a point and returns its index.
func (ix *NeighborIndex) Insert(pos vec3d.T) int {
	idx := ix.n
	ix.tree.Insert(samplePoint{pos: pos, idx: idx}, true)
	ix.n++
	return idx
}

// Len returns the number of indexed points.
func (ix *NeighborIndex) Len() int { return ix.n }

// Select returns neighbor indices for target under opts, nearest first, with
// the same semantics as Neighborhood.
func (ix *NeighborIndex) Select(target vec3d.T, opts SearchOptions) []int {
	q := samplePoint{pos: target, idx: -1}
	r2 := opts.Radius * opts.Radius

	var keep []kdtree.ComparableDist
	switch {
	case opts.MaxPoints > 0:
		keeper := kdtree.NewNKeeper(opts.MaxPoints)
		ix.tree.NearestSet(keeper, q)
		keep = keeper.Heap
	case opts.Radius > 0:
		keeper := kdtree.NewDistKeeper(r2)
		ix.tree.NearestSet(keeper, q)
		keep = keeper.Heap
	default:
		keeper := kdtree.NewNKeeper(ix.n)
		ix.tree.NearestSet(keeper, q)
		keep = keeper.Heap
	}

	type candidate struct {
		idx int
		d   float64
	}
	cands := make([]candidate, 0, len(keep))
	for _, item := range keep {
		if item.Comparable == nil {
			// Keeper sentinel.
			continue
		}
		if opts.Radius > 0 && item.Dist > r2 {
			continue
		}
		cands = append(cands, candidate{idx: item.Comparable.(samplePoint).idx, d: item.Dist})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].d != cands[j].d {
			return cands[i].d < cands[j].d
		}
		return cands[i].idx < cands[j].idx
	})
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.idx
	}
	return out
}
