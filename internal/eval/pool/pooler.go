package pool

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/dataset"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/target"
)

type File struct {
	Dataset string  `yaml:"dataset"`
	Scheme  string  `yaml:"scheme"`
	Queries []Entry `yaml:"queries"`
}

type Entry struct {
	QueryID string `yaml:"query_id"`
	Query   string `yaml:"query"`
	Docs    []Doc  `yaml:"docs"`
}

// Doc is a pooled candidate and the targets that returned it.
type Doc struct {
	Record  docid.Record `yaml:"record"`
	Sources []string     `yaml:"sources"`
}

// PoolResults merges the top depth results of every target into candidates keyed by
// document identity. Targets are visited in name order; records that cannot be
// identified under scheme are skipped.
func PoolResults(results map[string]*target.Execution, depth int, scheme docid.Scheme) []Doc {
	seen := make(map[docid.ID]int)
	var docs []Doc

	for _, name := range slices.Sorted(maps.Keys(results)) {
		exec := results[name]
		if exec == nil {
			continue
		}
		limit := min(depth, len(exec.Results))
		for _, rec := range exec.Results[:max(limit, 0)] {
			id, err := docid.FromRecord(rec, scheme)
			if err != nil {
				slog.Warn("skipping unidentifiable pooled record", "target", name, "error", err)
				continue
			}
			if i, ok := seen[id]; ok {
				if !slices.Contains(docs[i].Sources, name) {
					docs[i].Sources = append(docs[i].Sources, name)
				}
				continue
			}
			seen[id] = len(docs)
			docs = append(docs, Doc{Record: rec, Sources: []string{name}})
		}
	}
	return docs
}

// Build searches every sample against every target and pools the results.
// A failing target is logged and left out of that query's pool.
func Build(
	ctx context.Context,
	ds *dataset.Dataset,
	targets map[string]target.Target,
	depth int,
	scheme docid.Scheme,
) (*File, error) {
	pf := &File{
		Dataset: ds.Name,
		Scheme:  string(scheme),
		Queries: make([]Entry, 0, len(ds.Samples)),
	}

	for _, s := range ds.Samples {
		results := make(map[string]*target.Execution, len(targets))
		for name, tg := range targets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			exec, err := tg.Search(ctx, s.Text(), depth)
			if err != nil {
				slog.Warn("pool search failed", "query", s.ID, "target", name, "error", err)
				continue
			}
			results[name] = exec
		}

		pf.Queries = append(pf.Queries, Entry{
			QueryID: s.ID,
			Query:   s.Text(),
			Docs:    PoolResults(results, depth, scheme),
		})
	}

	slog.Info("pooling completed", "dataset", ds.Name, "queries", len(pf.Queries), "targets", len(targets))
	return pf, nil
}
