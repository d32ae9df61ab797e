package metrics

import (
	"fmt"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
)

// Preprocess normalizes ground truth and the top-K search results into comparable identifiers.
// Ground truth keeps its order and duplicates. K <= 0 yields an empty top-K slice.
func Preprocess(results, groundTruth []docid.Record, scheme docid.Scheme, k int) ([]docid.ID, []docid.ID, error) {
	gt, err := docid.FromRecords(groundTruth, scheme)
	if err != nil {
		return nil, nil, fmt.Errorf("ground truth: %w", err)
	}

	top, err := docid.FromRecords(topRecords(results, k), scheme)
	if err != nil {
		return nil, nil, fmt.Errorf("search result: %w", err)
	}

	return gt, top, nil
}

// PreprocessAll is Preprocess without truncation of the result list.
func PreprocessAll(results, groundTruth []docid.Record, scheme docid.Scheme) ([]docid.ID, []docid.ID, error) {
	return Preprocess(results, groundTruth, scheme, len(results))
}

// TopK returns the first min(k, len(ids)) identifiers.
func TopK(ids []docid.ID, k int) []docid.ID {
	return ids[:cutoff(k, len(ids))]
}

func topRecords(records []docid.Record, k int) []docid.Record {
	return records[:cutoff(k, len(records))]
}

func cutoff(k, n int) int {
	if k <= 0 {
		return 0
	}
	return min(k, n)
}

func idSet(ids []docid.ID) map[docid.ID]struct{} {
	set := make(map[docid.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
