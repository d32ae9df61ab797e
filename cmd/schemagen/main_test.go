package main

import (
	"testing"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleSpecParses(t *testing.T) {
	t.Setenv("AZURE_SEARCH_ENDPOINT", "https://search.example.net")
	t.Setenv("AZURE_SEARCH_INDEX", "main-index")
	t.Setenv("AZURE_SEARCH_KEY", "key")
	t.Setenv("MLFLOW_TRACKING_URI", "http://mlflow:5000")

	es, err := spec.Parse([]byte(exampleSpec))
	require.NoError(t, err)
	assert.Len(t, es.Targets, 2)
	assert.Equal(t, "main-index", es.Targets["azure"].Index)
	assert.Equal(t, 4, es.Runs.Concurrency)
}
