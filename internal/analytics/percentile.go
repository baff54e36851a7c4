package analytics

import (
	"math"
	"sort"
)

// Percentile computes the nearest-rank percentile of a sample. The sample
// is copied and sorted, never mutated. An empty sample yields 0.
func Percentile(samples []int64, p float64) int64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]int64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return nearestRank(sorted, p)
}

// ResponsePercentiles computes P50/P95/P99 over one sorted copy of the
// sample. P50 <= P95 <= P99 holds for any input; an empty sample yields
// all zeros.
func ResponsePercentiles(samples []int64) (p50, p95, p99 int64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	sorted := make([]int64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return nearestRank(sorted, 50), nearestRank(sorted, 95), nearestRank(sorted, 99)
}

// nearestRank indexes into an already-sorted sample. Rank is
// ceil(p/100 * n); the result is the value at that rank (1-based).
func nearestRank(sorted []int64, p float64) int64 {
	n := len(sorted)
	rank := int(math.Ceil(float64(n) * p / 100))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}
