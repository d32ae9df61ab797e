package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/evaluator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInputs(t *testing.T) {
	data := `{"search_result":[{"filename":"a.pdf","page_number":1}],"ground_truth":[{"filename":"a.pdf","page_number":"1"}]}

{"search_result":[],"ground_truth":[]}
`
	inputs, err := readInputs(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, json.Number("1"), inputs[0].SearchResult[0]["page_number"])

	_, err = readInputs(strings.NewReader("{\"search_result\":[]}\nnot json"))
	assert.ErrorContains(t, err, "line 2")
}

func TestScoreInputs(t *testing.T) {
	set, err := evaluator.ParseSet([]string{"recall@3", "rr"})
	require.NoError(t, err)

	inputs, err := readInputs(strings.NewReader(strings.Join([]string{
		`{"search_result":[{"filename":"b.pdf","page_number":1},{"filename":"a.pdf","page_number":1}],"ground_truth":[{"filename":"a.pdf","page_number":1}]}`,
		`{"search_result":[{"filename":"a.pdf"}],"ground_truth":[{"filename":"a.pdf","page_number":1}]}`,
		`{"search_result":[{"filename":"c.pdf","page_number":2}],"ground_truth":[{"filename":"a.pdf","page_number":1}]}`,
	}, "\n")))
	require.NoError(t, err)

	var buf bytes.Buffer
	summary, err := scoreInputs(inputs, set, &buf)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Scored)
	assert.Equal(t, 1, summary.Failed)
	assert.InDelta(t, 0.5, summary.Means["recall_at_3"], 1e-9)
	assert.InDelta(t, 0.25, summary.Means["reciprocal_rank"], 1e-9)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))
	assert.EqualValues(t, 1, failed["row"])
	assert.Contains(t, failed["error"], "page_number")
}

func TestPoolOutputPath(t *testing.T) {
	assert.Equal(t, "pool.yaml", poolOutputPath("pool.yaml", "manuals", 1))
	assert.Equal(t, "out/pool_manuals.yaml", poolOutputPath("out/pool.yaml", "manuals", 2))
}
