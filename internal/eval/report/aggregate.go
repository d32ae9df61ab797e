package report

import (
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/runner"
)

func Generate(er *runner.EvalResult, meta Meta) *Report {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	meta.Runs = RunsInfo{
		Top:               er.Config.Top,
		Concurrency:       er.Config.Concurrency,
		RequestsPerSecond: er.Config.RequestsPerSecond,
		WarmupRuns:        er.Config.WarmupRuns,
		Runs:              er.Config.Runs,
	}
	meta.Environment = NewEnvironmentInfo()

	r := &Report{Meta: meta}
	for _, jr := range er.Jobs {
		r.Jobs = append(r.Jobs, generateJob(jr))
	}
	return r
}

func generateJob(jr *runner.JobResult) JobReport {
	report := JobReport{
		JobName:    jr.JobName,
		Dataset:    jr.Dataset,
		MetricKeys: jr.MetricKeys,
	}

	for _, qID := range jr.QueryOrder {
		for _, name := range jr.TargetNames {
			qr, ok := jr.Results[qID][name]
			if !ok {
				continue
			}
			entry := Entry{
				QueryID:      qr.QueryID,
				Query:        qr.Query,
				TargetName:   name,
				Metrics:      qr.Metrics,
				TotalMatches: qr.TotalMatches,
				ResultCount:  len(qr.Results),
				Latency:      qr.Latency,
			}
			if qr.Error != nil {
				entry.Error = qr.Error.Error()
			}
			report.PerQuery = append(report.PerQuery, entry)
		}
	}

	for _, name := range jr.TargetNames {
		report.Aggregated = append(report.Aggregated, aggregate(jr.Rows(name), name, jr.MetricKeys))
	}
	return report
}

// aggregate averages each metric key over the rows that did not fail.
func aggregate(rows []runner.QueryResult, targetName string, keys []string) AggregatedEntry {
	agg := AggregatedEntry{
		TargetName: targetName,
		Means:      make(map[string]float64, len(keys)),
	}

	var latencies []runner.LatencyStats
	counted := 0

	for _, qr := range rows {
		agg.QueryCount++
		if qr.Failed() {
			agg.ErrorCount++
			continue
		}

		counted++
		latencies = append(latencies, qr.Latency)
		for _, k := range keys {
			agg.Means[k] += qr.Metrics[k]
		}
	}

	if counted > 0 {
		n := float64(counted)
		for _, k := range keys {
			agg.Means[k] /= n
		}
	}
	agg.Latency = runner.MergeLatencyStats(latencies...)

	return agg
}
