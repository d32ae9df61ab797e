package metrics

import "github.com/DjordjeVuckovic/search-eval/internal/eval/docid"

// PrecisionAtK computes the fraction of the top-K results that are relevant.
// Results are counted with repetition; the divisor is the number of results actually retrieved.
func PrecisionAtK(results, groundTruth []docid.ID, k int) float64 {
	top := TopK(results, k)
	if len(groundTruth) == 0 || len(top) == 0 {
		return 0
	}

	relevant := idSet(groundTruth)
	var hits int

	for _, id := range top {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(top))
}

// RecallAtK computes the fraction of distinct relevant documents found in the top-K results.
// Both sides are compared as sets.
func RecallAtK(results, groundTruth []docid.ID, k int) float64 {
	top := TopK(results, k)
	if len(groundTruth) == 0 || len(top) == 0 {
		return 0
	}

	relevant := idSet(groundTruth)
	found := idSet(top)

	var hits int
	for id := range found {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(relevant))
}

// F1AtK computes the harmonic mean of P@K and R@K.
func F1AtK(results, groundTruth []docid.ID, k int) float64 {
	p := PrecisionAtK(results, groundTruth, k)
	r := RecallAtK(results, groundTruth, k)

	if p+r == 0 {
		return 0
	}

	return 2 * p * r / (p + r)
}
