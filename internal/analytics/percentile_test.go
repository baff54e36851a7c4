package analytics

import "testing"

func TestResponsePercentiles_Ordering(t *testing.T) {
	tests := []struct {
		name    string
		samples []int64
	}{
		{name: "empty", samples: nil},
		{name: "single", samples: []int64{250}},
		{name: "uniform", samples: []int64{100, 100, 100, 100}},
		{name: "ascending", samples: []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}},
		{name: "skewed", samples: []int64{5, 5, 5, 5, 5, 5, 5, 5, 5, 9000}},
		{name: "unsorted", samples: []int64{900, 10, 450, 30, 120, 88, 2000, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p50, p95, p99 := ResponsePercentiles(tt.samples)
			if p50 > p95 || p95 > p99 {
				t.Errorf("percentile ordering violated: p50=%d p95=%d p99=%d", p50, p95, p99)
			}
			if len(tt.samples) == 0 && (p50 != 0 || p95 != 0 || p99 != 0) {
				t.Errorf("empty sample yields p50=%d p95=%d p99=%d, want all 0", p50, p95, p99)
			}
		})
	}
}

func TestResponsePercentiles_NearestRank(t *testing.T) {
	// 100 samples 1..100: nearest-rank P50 is the 50th value, P95 the
	// 95th, P99 the 99th.
	samples := make([]int64, 100)
	for i := range samples {
		samples[i] = int64(i + 1)
	}

	p50, p95, p99 := ResponsePercentiles(samples)
	if p50 != 50 {
		t.Errorf("p50 = %d, want 50", p50)
	}
	if p95 != 95 {
		t.Errorf("p95 = %d, want 95", p95)
	}
	if p99 != 99 {
		t.Errorf("p99 = %d, want 99", p99)
	}
}

func TestResponsePercentiles_DoesNotMutateInput(t *testing.T) {
	samples := []int64{30, 10, 20}
	ResponsePercentiles(samples)
	if samples[0] != 30 || samples[1] != 10 || samples[2] != 20 {
		t.Errorf("input mutated: %v", samples)
	}
}

func TestPercentile_SmallSamples(t *testing.T) {
	tests := []struct {
		name    string
		samples []int64
		p       float64
		want    int64
	}{
		{name: "median of one", samples: []int64{7}, p: 50, want: 7},
		{name: "median of two", samples: []int64{10, 20}, p: 50, want: 10},
		{name: "p99 of two", samples: []int64{10, 20}, p: 99, want: 20},
		{name: "median of three", samples: []int64{30, 10, 20}, p: 50, want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentile(tt.samples, tt.p); got != tt.want {
				t.Errorf("Percentile(%v, %v) = %d, want %d", tt.samples, tt.p, got, tt.want)
			}
		})
	}
}
