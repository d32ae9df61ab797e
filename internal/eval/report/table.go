package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

func WriteTable(r *Report, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Search Retrieval Evaluation ===\n")
	if r.Meta.Experiment != "" {
		fmt.Fprintf(tw, "experiment: %s  run: %s\n", r.Meta.Experiment, r.Meta.RunName)
	}

	for i := range r.Jobs {
		jr := &r.Jobs[i]
		fmt.Fprintf(tw, "\n--- Job: %s (dataset %s) ---\n\n", jr.JobName, jr.Dataset)
		writeAggregatedTable(tw, jr)
		writeLatencyTable(tw, jr)
		writePerQueryTable(tw, jr)
	}

	tw.Flush()
}

func writeRow(tw *tabwriter.Writer, cells []string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

func writeHeader(tw *tabwriter.Writer, header []string) {
	writeRow(tw, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(tw, sep)
}

func writeAggregatedTable(tw *tabwriter.Writer, jr *JobReport) {
	fmt.Fprintf(tw, "Aggregated Results (mean across successful queries)\n\n")

	header := append([]string{"Target"}, jr.MetricKeys...)
	writeHeader(tw, append(header, "Errors"))

	for _, agg := range jr.Aggregated {
		row := []string{agg.TargetName}
		for _, k := range jr.MetricKeys {
			row = append(row, fmt.Sprintf("%.4f", agg.Means[k]))
		}
		row = append(row, fmt.Sprintf("%d/%d", agg.ErrorCount, agg.QueryCount))
		writeRow(tw, row)
	}
	fmt.Fprintln(tw)
}

func writeLatencyTable(tw *tabwriter.Writer, jr *JobReport) {
	fmt.Fprintf(tw, "Latency Statistics\n\n")
	writeHeader(tw, []string{"Target", "Min", "p50", "p95", "p99", "Max", "Mean", "Stddev", "Samples"})

	for _, agg := range jr.Aggregated {
		s := agg.Latency
		writeRow(tw, []string{
			agg.TargetName,
			fmtDuration(s.Min),
			fmtDuration(s.P50()),
			fmtDuration(s.P95()),
			fmtDuration(s.P99()),
			fmtDuration(s.Max),
			fmtDuration(s.Mean),
			fmtDuration(s.Stddev),
			fmt.Sprintf("%d", s.SampleCount),
		})
	}
	fmt.Fprintln(tw)
}

func writePerQueryTable(tw *tabwriter.Writer, jr *JobReport) {
	fmt.Fprintf(tw, "Per-Query Results\n\n")

	header := append([]string{"Query", "Target"}, jr.MetricKeys...)
	writeHeader(tw, append(header, "Hits", "Status"))

	for _, e := range jr.PerQuery {
		row := []string{e.QueryID, e.TargetName}
		for _, k := range jr.MetricKeys {
			row = append(row, fmtScore(e.Metrics, k))
		}
		status := "OK"
		if e.Error != "" {
			status = "ERR"
		}
		row = append(row, fmt.Sprintf("%d", e.TotalMatches), status)
		writeRow(tw, row)
	}
	fmt.Fprintln(tw)
}

func fmtScore(scores map[string]float64, key string) string {
	v, ok := scores[key]
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.4f", v)
}

func fmtDuration(d time.Duration) string {
	switch {
	case d == 0:
		return "-"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
