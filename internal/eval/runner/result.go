package runner

import (
	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
)

// QueryResult is one evaluated row: a single sample searched against a single target.
type QueryResult struct {
	QueryID      string
	Query        string
	JobName      string
	TargetName   string
	Metrics      map[string]float64
	Results      []docid.Record
	TotalMatches int64
	Latency      LatencyStats
	Error        error
}

func (qr QueryResult) Failed() bool {
	return qr.Error != nil
}

type JobResult struct {
	JobName     string
	Dataset     string
	Results     map[string]map[string]QueryResult // [queryID][targetName]
	QueryOrder  []string
	TargetNames []string
	MetricKeys  []string
}

// Rows returns the job's results for one target in dataset order.
func (jr *JobResult) Rows(targetName string) []QueryResult {
	rows := make([]QueryResult, 0, len(jr.QueryOrder))
	for _, qid := range jr.QueryOrder {
		if qr, ok := jr.Results[qid][targetName]; ok {
			rows = append(rows, qr)
		}
	}
	return rows
}

type EvalResult struct {
	Jobs   []*JobResult
	Config Config
}

func (er *EvalResult) AllTargetNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, jr := range er.Jobs {
		for _, name := range jr.TargetNames {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
