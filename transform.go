package geostat

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// TransformTable maps original values to normal scores and back. Both slices
// are sorted ascending and aligned index to index.
type TransformTable struct {
	Original []float64
	Scores   []float64
}

// NormalScores maps values to standard normal quantiles through their ranks,
// using rank/(n+1) so no score is infinite. Ties receive scores in input
// order. The returned table supports BackTransform.
func NormalScores(values []float64) ([]float64, *TransformTable, error) {
	n := len(values)
	if err := validateMinLen(n, 1, "values"); err != nil {
		return nil, nil, err
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	scores := make([]float64, n)
	table := &TransformTable{
		Original: make([]float64, n),
		Scores:   make([]float64, n),
	}
	for rank, i := range order {
		s := distuv.UnitNormal.Quantile(float64(rank+1) / float64(n+1))
		scores[i] = s
		table.Original[rank] = values[i]
		table.Scores[rank] = s
	}
	return scores, table, nil
}

// BackTransform maps normal scores back to original units by linear
// interpolation through the table. Scores beyond the table ends clamp to the
// extreme original values.
func BackTransform(scores []float64, table *TransformTable) ([]float64, error) {
	if table == nil || len(table.Original) == 0 {
		return nil, ErrMissingParameter
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = table.lookup(s)
	}
	return out, nil
}

func (t *TransformTable) lookup(s float64) float64 {
	n := len(t.Scores)
	if s <= t.Scores[0] {
		return t.Original[0]
	}
	if s >= t.Scores[n-1] {
		return t.Original[n-1]
	}
	j := sort.SearchFloat64s(t.Scores, s)
	lo, hi := t.Scores[j-1], t.Scores[j]
	if hi == lo {
		return t.Original[j]
	}
	f := (s - lo) / (hi - lo)
	return t.Original[j-1] + f*(t.Original[j]-t.Original[j-1])
}

// IndicatorTransform codes each value against each cutoff: 1 where the value
// is at or below the cutoff, else 0. The result is indexed [value][cutoff].
func IndicatorTransform(values []float64, cutoffs []float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, v := range values {
		row := make([]float64, len(cutoffs))
		for k, c := range cutoffs {
			if v <= c {
				row[k] = 1
			}
		}
		out[i] = row
	}
	return out
}
