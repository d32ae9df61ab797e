//go:build integration

package target

import (
	"context"
	"testing"

	"github.com/DjordjeVuckovic/search-eval/internal/storage/es"
	pkgtesting "github.com/DjordjeVuckovic/search-eval/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEsTarget_Integration(t *testing.T) {
	ctx := context.Background()
	container := pkgtesting.NewESContainer(ctx, t)
	container.IndexDocuments(ctx, t, "pages", []map[string]any{
		{"filename": "manual.pdf", "page_number": 12, "content": "The warranty period is two years"},
		{"filename": "manual.pdf", "page_number": 13, "content": "Cleaning the filter"},
		{"filename": "guide.pdf", "page_number": 3, "content": "Warranty claims need a receipt"},
	})

	tg, err := NewEsTarget("es", EsConfig{
		Client:       es.ClientConfig{Addresses: []string{container.Address}, IndexName: "pages"},
		SearchFields: []string{"content"},
	})
	require.NoError(t, err)

	exec, err := tg.Search(ctx, "warranty", 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, exec.TotalMatches)
	require.Len(t, exec.Results, 2)
	for _, r := range exec.Results {
		assert.Contains(t, r, "filename")
		assert.NotContains(t, r, "content")
	}
}
