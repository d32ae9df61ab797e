package report

import (
	"runtime"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/runner"
)

type Report struct {
	Meta Meta        `json:"meta"`
	Jobs []JobReport `json:"jobs"`
}

type Meta struct {
	Experiment  string                `json:"experiment,omitempty"`
	RunName     string                `json:"run_name,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
	Targets     map[string]TargetInfo `json:"targets,omitempty"`
	Runs        RunsInfo              `json:"runs"`
	Environment EnvironmentInfo       `json:"environment"`
}

type TargetInfo struct {
	Type  string `json:"type"`
	Index string `json:"index,omitempty"`
}

type RunsInfo struct {
	Top               int     `json:"top"`
	Concurrency       int     `json:"concurrency"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`
	WarmupRuns        int     `json:"warmup_runs"`
	Runs              int     `json:"runs"`
}

type EnvironmentInfo struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	NumCPU    int    `json:"num_cpu"`
}

func NewEnvironmentInfo() EnvironmentInfo {
	return EnvironmentInfo{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
	}
}

type JobReport struct {
	JobName    string            `json:"job_name"`
	Dataset    string            `json:"dataset"`
	MetricKeys []string          `json:"metric_keys"`
	Aggregated []AggregatedEntry `json:"aggregated"`
	PerQuery   []Entry           `json:"per_query"`
}

// Entry is one per-query row of the report.
type Entry struct {
	QueryID      string              `json:"query_id"`
	Query        string              `json:"query"`
	TargetName   string              `json:"target"`
	Metrics      map[string]float64  `json:"metrics,omitempty"`
	TotalMatches int64               `json:"total_matches"`
	ResultCount  int                 `json:"result_count"`
	Latency      runner.LatencyStats `json:"latency"`
	Error        string              `json:"error,omitempty"`
}

// AggregatedEntry holds the mean of every metric key over a target's successful rows.
type AggregatedEntry struct {
	TargetName string              `json:"target"`
	Means      map[string]float64  `json:"means"`
	Latency    runner.LatencyStats `json:"latency"`
	QueryCount int                 `json:"query_count"`
	ErrorCount int                 `json:"error_count"`
}

// TrackingMetrics flattens the entry into the metric map logged to tracking sinks.
func (a AggregatedEntry) TrackingMetrics() map[string]float64 {
	out := make(map[string]float64, len(a.Means)+7)
	for k, v := range a.Means {
		out[k] = v
	}
	for k, v := range a.Latency.Millis("latency") {
		out[k] = v
	}
	out["query_count"] = float64(a.QueryCount)
	out["error_count"] = float64(a.ErrorCount)
	return out
}

func (jr *JobReport) Aggregate(targetName string) (AggregatedEntry, bool) {
	for _, agg := range jr.Aggregated {
		if agg.TargetName == targetName {
			return agg, true
		}
	}
	return AggregatedEntry{}, false
}
