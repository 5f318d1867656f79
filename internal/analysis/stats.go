package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// finiteSorted returns the non-NaN, finite values of xs in ascending order.
func finiteSorted(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	sort.Float64s(out)
	return out
}

// quantile returns the q-quantile of sorted using linear interpolation
// between closest ranks, the default of numpy.percentile and
// pandas.Series.quantile. sorted must be ascending and non-empty.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// histogram counts sorted values into bins equal-width bins spanning
// [min, max]. The last bin includes max. A degenerate range is widened by
// half a unit on each side.
func histogram(sorted []float64, bins int) []Bin {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	edges[0], edges[bins] = lo, hi

	// gonum treats the top divider as exclusive.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: edges[i], Upper: edges[i+1], Count: int(counts[i])}
	}
	return out
}

// pearson returns the correlation of the pairs where both x and y are
// present. Fewer than two pairs or a constant side yields NaN.
func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	// rounding can push |r| past 1
	return math.Max(-1, math.Min(1, r))
}

// nanMean averages the non-NaN values of xs; NaN when there are none.
func nanMean(xs []float64) float64 {
	var sum float64
	var n int
	for _, x := range xs {
		if !math.IsNaN(x) {
			sum += x
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
