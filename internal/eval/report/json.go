package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

func WriteJSON(r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteRowsJSONL writes one flat object per query and target: identifiers,
// every metric key at the top level, and the error if the row failed.
func WriteRowsJSONL(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create rows file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	for _, jr := range r.Jobs {
		for _, e := range jr.PerQuery {
			if err := enc.Encode(flattenEntry(jr.JobName, e)); err != nil {
				return fmt.Errorf("encode row %q: %w", e.QueryID, err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return f.Close()
}

func flattenEntry(job string, e Entry) map[string]any {
	row := make(map[string]any, len(e.Metrics)+6)
	for k, v := range e.Metrics {
		row[k] = v
	}
	row["job"] = job
	row["target"] = e.TargetName
	row["query_id"] = e.QueryID
	row["query"] = e.Query
	row["total_matches"] = e.TotalMatches
	if e.Error != "" {
		row["error"] = e.Error
	}
	return row
}
