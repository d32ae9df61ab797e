package target

import (
	"context"
	"testing"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFromSpec(t *testing.T) {
	targets, cleanup, err := CreateFromSpec(context.Background(), map[string]spec.Target{
		"azure": {Type: spec.TargetAzureSearch, Connection: "https://x.search.windows.net", Index: "manuals"},
		"es":    {Type: spec.TargetElasticsearch, Connection: "http://localhost:9200", Index: "pages"},
		"api":   {Type: spec.TargetAPI, Connection: "http://localhost:8080/search"},
	})
	require.NoError(t, err)
	defer cleanup()

	require.Len(t, targets, 3)
	assert.IsType(t, &AzureSearchTarget{}, targets["azure"])
	assert.IsType(t, &EsTarget{}, targets["es"])
	assert.IsType(t, &APITarget{}, targets["api"])
	for name, tg := range targets {
		assert.Equal(t, name, tg.Name())
	}
}

func TestCreateFromSpec_Unsupported(t *testing.T) {
	_, _, err := CreateFromSpec(context.Background(), map[string]spec.Target{
		"solr": {Type: "solr", Connection: "http://localhost:8983"},
	})
	assert.ErrorContains(t, err, "unsupported target type")
}
