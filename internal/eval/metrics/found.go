package metrics

import "github.com/DjordjeVuckovic/search-eval/internal/eval/docid"

const DefaultFoundK = 3

// FoundAtK returns 1 if truth is among the first K results, 0 otherwise.
// A zero truth identifier or an empty key never matches.
func FoundAtK(truth docid.ID, results []docid.ID, k int) float64 {
	if truth.IsZero() || truth.Key() == "" || len(results) == 0 {
		return 0
	}

	for _, id := range TopK(results, k) {
		if id == truth {
			return 1
		}
	}
	return 0
}
