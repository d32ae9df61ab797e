package metrics

import (
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(filename, page string) docid.ID {
	return docid.FromLocation(filename, page)
}

func newIDs(n int) []docid.ID {
	ids := make([]docid.ID, n)
	for i := range ids {
		ids[i] = loc(fmt.Sprintf("doc%d.pdf", i), "1")
	}
	return ids
}

// doc2 p1, doc1 p2, doc3 p5 ranked against a single relevant page doc1 p2.
func scenarioA() (results, groundTruth []docid.ID) {
	results = []docid.ID{loc("doc2.pdf", "1"), loc("doc1.pdf", "2"), loc("doc3.pdf", "5")}
	groundTruth = []docid.ID{loc("doc1.pdf", "2")}
	return results, groundTruth
}

func TestScenarioA(t *testing.T) {
	results, gt := scenarioA()

	assert.InDelta(t, 1.0/3.0, PrecisionAtK(results, gt, 3), 1e-9)
	assert.InDelta(t, 1.0, RecallAtK(results, gt, 3), 1e-9)
	assert.InDelta(t, 0.5, F1AtK(results, gt, 3), 1e-9)
	assert.InDelta(t, 0.5, ReciprocalRank(results, gt), 1e-9)
	assert.InDelta(t, 0.5, AveragePrecision(results, gt), 1e-9)
}

func TestDegenerateInputs(t *testing.T) {
	ids := newIDs(3)

	t.Run("empty ground truth", func(t *testing.T) {
		assert.Zero(t, PrecisionAtK(ids, nil, 3))
		assert.Zero(t, RecallAtK(ids, nil, 3))
		assert.Zero(t, F1AtK(ids, nil, 3))
		assert.Zero(t, AveragePrecision(ids, nil))
		assert.Zero(t, ReciprocalRank(ids, nil))
	})

	t.Run("empty results", func(t *testing.T) {
		assert.Zero(t, PrecisionAtK(nil, ids, 3))
		assert.Zero(t, RecallAtK(nil, ids, 3))
		assert.Zero(t, F1AtK(nil, ids, 3))
		assert.Zero(t, AveragePrecision(nil, ids))
		assert.Zero(t, ReciprocalRank(nil, ids))
		assert.Zero(t, FoundAtK(ids[0], nil, 3))
	})

	t.Run("k=0 and negative k", func(t *testing.T) {
		for _, k := range []int{0, -1} {
			assert.Zero(t, PrecisionAtK(ids, ids, k))
			assert.Zero(t, RecallAtK(ids, ids, k))
			assert.Zero(t, F1AtK(ids, ids, k))
			assert.Zero(t, FoundAtK(ids[0], ids, k))
		}
	})
}

func TestTopK(t *testing.T) {
	ids := newIDs(5)

	tests := []struct {
		name string
		k    int
		want int
	}{
		{name: "k smaller than list", k: 3, want: 3},
		{name: "k equal to list", k: 5, want: 5},
		{name: "k larger than list", k: 10, want: 5},
		{name: "k zero", k: 0, want: 0},
		{name: "k negative", k: -2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopK(ids, tt.k)
			assert.Len(t, got, tt.want)
			assert.Equal(t, ids[:tt.want], got)
		})
	}

	assert.Empty(t, TopK(nil, 3))
}

func TestPrecisionAtK(t *testing.T) {
	ids := newIDs(5)

	tests := []struct {
		name        string
		results     []docid.ID
		groundTruth []docid.ID
		k           int
		want        float64
	}{
		{
			name:        "all relevant",
			results:     ids[:3],
			groundTruth: ids[:3],
			k:           3,
			want:        1.0,
		},
		{
			name:        "half relevant",
			results:     ids[:4],
			groundTruth: []docid.ID{ids[0], ids[2]},
			k:           4,
			want:        0.5,
		},
		{
			name:        "none relevant",
			results:     ids[:3],
			groundTruth: []docid.ID{ids[4]},
			k:           3,
			want:        0,
		},
		{
			name:        "k larger than result list divides by retrieved count",
			results:     ids[:2],
			groundTruth: ids[:2],
			k:           5,
			want:        1.0,
		},
		{
			name:        "repeated result counted each time",
			results:     []docid.ID{ids[0], ids[0], ids[1]},
			groundTruth: []docid.ID{ids[0]},
			k:           3,
			want:        2.0 / 3.0,
		},
		{
			name:        "only top-k considered",
			results:     []docid.ID{ids[1], ids[2], ids[0]},
			groundTruth: []docid.ID{ids[0]},
			k:           2,
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrecisionAtK(tt.results, tt.groundTruth, tt.k)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRecallAtK(t *testing.T) {
	ids := newIDs(5)

	tests := []struct {
		name        string
		results     []docid.ID
		groundTruth []docid.ID
		k           int
		want        float64
	}{
		{
			name:        "all found in top-K",
			results:     ids[:3],
			groundTruth: ids[:2],
			k:           3,
			want:        1.0,
		},
		{
			name:        "partial recall",
			results:     ids[:2],
			groundTruth: []docid.ID{ids[0], ids[1], ids[3]},
			k:           2,
			want:        2.0 / 3.0,
		},
		{
			name:        "duplicate ground truth counted once",
			results:     ids[:1],
			groundTruth: []docid.ID{ids[0], ids[0], ids[1]},
			k:           3,
			want:        0.5,
		},
		{
			name:        "duplicate results counted once",
			results:     []docid.ID{ids[0], ids[0], ids[0]},
			groundTruth: []docid.ID{ids[0], ids[1]},
			k:           3,
			want:        0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecallAtK(tt.results, tt.groundTruth, tt.k)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRecallAtK_MonotonicInK(t *testing.T) {
	ids := newIDs(5)
	results := []docid.ID{ids[4], ids[0], ids[3], ids[1], ids[2]}
	groundTruth := []docid.ID{ids[0], ids[1], ids[2]}

	prev := 0.0
	for k := 1; k <= len(results)+2; k++ {
		got := RecallAtK(results, groundTruth, k)
		assert.GreaterOrEqual(t, got, prev, "k=%d", k)
		assert.LessOrEqual(t, got, 1.0)
		prev = got
	}
	assert.InDelta(t, 1.0, prev, 1e-9)
}

func TestF1AtK(t *testing.T) {
	ids := newIDs(4)

	t.Run("harmonic mean", func(t *testing.T) {
		// P@3 = 2/3, R@3 = 2/3 (ids[0], ids[1] of three relevant found)
		results := []docid.ID{ids[0], ids[2], ids[1]}
		groundTruth := []docid.ID{ids[0], ids[1], ids[3]}
		assert.InDelta(t, 2.0/3.0, F1AtK(results, groundTruth, 3), 1e-9)
	})

	t.Run("zero when nothing relevant", func(t *testing.T) {
		assert.Zero(t, F1AtK(ids[:2], ids[2:], 2))
	})

	t.Run("one when precision and recall are one", func(t *testing.T) {
		assert.InDelta(t, 1.0, F1AtK(ids[:2], ids[:2], 2), 1e-9)
	})
}

func TestAveragePrecision(t *testing.T) {
	ids := newIDs(5)

	tests := []struct {
		name        string
		results     []docid.ID
		groundTruth []docid.ID
		want        float64
	}{
		{
			name:        "perfect ranking",
			results:     ids[:3],
			groundTruth: ids[:3],
			want:        1.0,
		},
		{
			name:        "relevant at positions 1 and 3",
			results:     []docid.ID{ids[0], ids[2], ids[1]},
			groundTruth: []docid.ID{ids[0], ids[1]},
			// (1/1 + 2/3) / 2
			want: (1.0 + 2.0/3.0) / 2.0,
		},
		{
			name:        "relevant documents not all retrieved",
			results:     []docid.ID{ids[0], ids[4]},
			groundTruth: []docid.ID{ids[0], ids[1]},
			want:        0.5,
		},
		{
			name:        "raw ground truth count is the denominator",
			results:     []docid.ID{ids[0]},
			groundTruth: []docid.ID{ids[0], ids[0]},
			want:        0.5,
		},
		{
			name:        "repeated relevant results are not clamped",
			results:     []docid.ID{ids[0], ids[0]},
			groundTruth: []docid.ID{ids[0]},
			want:        2.0,
		},
		{
			name:        "ground truth items occupy first ranks",
			results:     []docid.ID{ids[1], ids[0], ids[3], ids[4]},
			groundTruth: []docid.ID{ids[0], ids[1]},
			want:        1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AveragePrecision(tt.results, tt.groundTruth)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestReciprocalRank(t *testing.T) {
	ids := newIDs(5)

	tests := []struct {
		name        string
		results     []docid.ID
		groundTruth []docid.ID
		want        float64
	}{
		{
			name:        "no relevant docs",
			results:     ids[:3],
			groundTruth: []docid.ID{ids[4]},
			want:        0,
		},
		{
			name:        "first is relevant",
			results:     ids[:3],
			groundTruth: []docid.ID{ids[0]},
			want:        1.0,
		},
		{
			name:        "third is first relevant",
			results:     ids[:5],
			groundTruth: []docid.ID{ids[2], ids[4]},
			want:        1.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReciprocalRank(tt.results, tt.groundTruth)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFoundAtK(t *testing.T) {
	truth := docid.FromURL("https://x/doc.pdf")

	tests := []struct {
		name    string
		truth   docid.ID
		results []docid.ID
		k       int
		want    float64
	}{
		{
			name:    "case insensitive match",
			truth:   truth,
			results: []docid.ID{docid.FromURL("HTTPS://X/DOC.PDF")},
			k:       3,
			want:    1,
		},
		{
			name:    "outside top-k",
			truth:   truth,
			results: []docid.ID{docid.FromURL("a"), docid.FromURL("b"), docid.FromURL("c"), truth},
			k:       3,
			want:    0,
		},
		{
			name:    "fewer results than k",
			truth:   truth,
			results: []docid.ID{docid.FromURL("a"), truth},
			k:       10,
			want:    1,
		},
		{
			name:    "empty truth url",
			truth:   docid.FromURL(""),
			results: []docid.ID{docid.FromURL("")},
			k:       3,
			want:    0,
		},
		{
			name:    "zero truth",
			truth:   docid.ID{},
			results: []docid.ID{truth},
			k:       3,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FoundAtK(tt.truth, tt.results, tt.k))
		})
	}
}

func TestPreprocess(t *testing.T) {
	results := []docid.Record{
		{"filename": "DOC2.pdf", "page_number": 1},
		{"filename": "doc1.PDF", "page_number": "2"},
		{"filename": "doc3.pdf", "page_number": 5},
	}
	groundTruth := []docid.Record{
		{"filename": "Doc1.pdf", "page_number": 2},
		{"filename": "Doc1.pdf", "page_number": 2},
	}

	t.Run("truncates results and keeps ground truth duplicates", func(t *testing.T) {
		gt, top, err := Preprocess(results, groundTruth, docid.SchemeLocation, 2)
		require.NoError(t, err)
		assert.Equal(t, []docid.ID{loc("doc1.pdf", "2"), loc("doc1.pdf", "2")}, gt)
		assert.Equal(t, []docid.ID{loc("doc2.pdf", "1"), loc("doc1.pdf", "2")}, top)
	})

	t.Run("no truncation", func(t *testing.T) {
		_, top, err := PreprocessAll(results, groundTruth, docid.SchemeLocation)
		require.NoError(t, err)
		assert.Len(t, top, 3)
	})

	t.Run("empty results", func(t *testing.T) {
		_, top, err := Preprocess(nil, groundTruth, docid.SchemeLocation, 3)
		require.NoError(t, err)
		assert.Empty(t, top)
	})

	t.Run("malformed record past the cut-off is ignored", func(t *testing.T) {
		withBad := append(append([]docid.Record{}, results...), docid.Record{"filename": "x"})
		_, top, err := Preprocess(withBad, groundTruth, docid.SchemeLocation, 3)
		require.NoError(t, err)
		assert.Len(t, top, 3)
	})

	t.Run("malformed ground truth fails", func(t *testing.T) {
		_, _, err := Preprocess(results, []docid.Record{{"url": "x"}}, docid.SchemeLocation, 3)
		assert.ErrorIs(t, err, docid.ErrMissingField)
		assert.ErrorContains(t, err, "ground truth")
	})
}
