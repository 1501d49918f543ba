// Package rank holds the vector arithmetic shared by the recommenders and
// the offline index builder.
package rank

import (
	"math"
	"sort"
)

// Dot returns the dot product over the common prefix of a and b.
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the L2 norm of v.
func Norm(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// Cosine returns the cosine similarity of a and b, or 0 if either is a zero vector.
func Cosine(a, b []float64) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// ArgsortDesc returns the indices of vals ordered by descending value.
// Equal values keep their original order.
func ArgsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return vals[idxs[i]] > vals[idxs[j]] })
	return idxs
}

// TopK returns at most k indices of vals by descending value, skipping any
// index for which skip returns true. A nil skip keeps every index.
func TopK(vals []float64, k int, skip func(i int) bool) []int {
	if k <= 0 {
		return nil
	}
	out := make([]int, 0, k)
	for _, i := range ArgsortDesc(vals) {
		if skip != nil && skip(i) {
			continue
		}
		out = append(out, i)
		if len(out) == k {
			break
		}
	}
	return out
}
