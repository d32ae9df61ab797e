package metrics

import "github.com/DjordjeVuckovic/search-eval/internal/eval/docid"

// AveragePrecision sums the precision of every prefix ending at a relevant result
// over the full, untruncated result list.
// The sum is divided by the raw ground truth count, duplicates included.
func AveragePrecision(results, groundTruth []docid.ID) float64 {
	if len(groundTruth) == 0 || len(results) == 0 {
		return 0
	}

	relevant := idSet(groundTruth)
	var sumPrecision float64
	var relevantSeen int

	for i, id := range results {
		if _, ok := relevant[id]; ok {
			relevantSeen++
			sumPrecision += float64(relevantSeen) / float64(i+1)
		}
	}

	return sumPrecision / float64(len(groundTruth))
}

// ReciprocalRank returns 1/rank of the first relevant result.
func ReciprocalRank(results, groundTruth []docid.ID) float64 {
	if len(groundTruth) == 0 || len(results) == 0 {
		return 0
	}

	relevant := idSet(groundTruth)
	for i, id := range results {
		if _, ok := relevant[id]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}
