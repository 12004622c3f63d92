// Package stats implements the scalar statistics the tick engine's
// concentration rules need (spec §4.6): the Gini coefficient over a
// non-negative distribution. This is plain arithmetic with no natural
// third-party home in the corpus; see DESIGN.md for why it stays on
// the standard library.
package stats

import "sort"

// Gini computes the Gini coefficient of a non-negative distribution
// using G = (2·Σ i·xᵢ)/(n·Σxᵢ) − (n+1)/n over the values sorted
// ascending (1-indexed i), per spec §4.6. Returns 0 for an empty
// distribution or one that sums to zero, matching spec §9's edge case.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var total, weighted float64
	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}
	if total == 0 {
		return 0
	}

	return (2*weighted)/(float64(n)*total) - float64(n+1)/float64(n)
}
