package runner

import (
	"math"
	"slices"
	"time"
)

// LatencyStats summarizes the search latencies observed for one row or a whole target.
type LatencyStats struct {
	Min         time.Duration         `json:"min"`
	Max         time.Duration         `json:"max"`
	Mean        time.Duration         `json:"mean"`
	Median      time.Duration         `json:"median"`
	Stddev      time.Duration         `json:"stddev"`
	Percentiles map[int]time.Duration `json:"percentiles"`
	SampleCount int                   `json:"sample_count"`
	Raw         []time.Duration       `json:"-"`
}

var trackedPercentiles = []int{50, 90, 95, 99}

func ComputeLatencyStats(durations []time.Duration) LatencyStats {
	stats := LatencyStats{Percentiles: make(map[int]time.Duration, len(trackedPercentiles))}
	if len(durations) == 0 {
		return stats
	}

	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.Median = percentile(sorted, 50)
	stats.SampleCount = len(sorted)
	stats.Raw = durations

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	stats.Mean = sum / time.Duration(len(sorted))

	if len(sorted) > 1 {
		mean := float64(stats.Mean)
		var sq float64
		for _, d := range sorted {
			diff := float64(d) - mean
			sq += diff * diff
		}
		stats.Stddev = time.Duration(math.Sqrt(sq / float64(len(sorted)-1)))
	}

	for _, p := range trackedPercentiles {
		stats.Percentiles[p] = percentile(sorted, p)
	}
	return stats
}

// percentile interpolates linearly between the closest ranks of an ascending slice.
func percentile(sorted []time.Duration, p int) time.Duration {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}

	rank := float64(p) / 100 * float64(len(sorted)-1)
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	w := rank - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-w) + float64(sorted[lower+1])*w)
}

// MergeLatencyStats recomputes stats over the raw samples of every input.
func MergeLatencyStats(stats ...LatencyStats) LatencyStats {
	var all []time.Duration
	for _, s := range stats {
		all = append(all, s.Raw...)
	}
	return ComputeLatencyStats(all)
}

func (s LatencyStats) P50() time.Duration { return s.Percentiles[50] }
func (s LatencyStats) P95() time.Duration { return s.Percentiles[95] }
func (s LatencyStats) P99() time.Duration { return s.Percentiles[99] }

func (s LatencyStats) IsZero() bool {
	return s.SampleCount == 0
}

// Millis flattens the stats into millisecond gauges suitable for metric sinks.
func (s LatencyStats) Millis(prefix string) map[string]float64 {
	if s.IsZero() {
		return map[string]float64{}
	}
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return map[string]float64{
		prefix + "_mean_ms": ms(s.Mean),
		prefix + "_p50_ms":  ms(s.P50()),
		prefix + "_p95_ms":  ms(s.P95()),
		prefix + "_p99_ms":  ms(s.P99()),
		prefix + "_max_ms":  ms(s.Max),
	}
}
