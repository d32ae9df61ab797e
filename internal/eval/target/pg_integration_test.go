//go:build integration

package target

import (
	"context"
	"testing"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/evaluator"
	pkgtesting "github.com/DjordjeVuckovic/search-eval/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pagesQuery = `
	SELECT filename, page_number, content
	FROM search_pages
	WHERE tsv @@ plainto_tsquery('english', $1::text)
	ORDER BY ts_rank(tsv, plainto_tsquery('english', $1::text)) DESC, id
	LIMIT $2`

func TestPgTarget_Integration(t *testing.T) {
	ctx := context.Background()
	pool := pkgtesting.NewPGContainerWithCleanup(ctx, t).Pool(ctx, t)

	_, err := pool.GetConn().Exec(ctx, `
		INSERT INTO search_pages (filename, page_number, content) VALUES
			('Manual.pdf', 12, 'The warranty period is two years from purchase'),
			('manual.pdf', 13, 'Cleaning the filter'),
			('guide.pdf', 3, 'Warranty claims need a receipt')`)
	require.NoError(t, err)

	tg := NewPgTarget("pg", pagesQuery, DefaultFields, pool)
	exec, err := tg.Search(ctx, "warranty period", 5)
	require.NoError(t, err)
	require.NotEmpty(t, exec.Results)
	assert.NotContains(t, exec.Results[0], "content")

	row, err := evaluator.DefaultSet().Invoke(evaluator.Input{
		SearchResult: exec.Results,
		GroundTruth:  []docid.Record{{"filename": "manual.pdf", "page_number": "12"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, row["recall_at_3"])
	assert.Equal(t, 1.0, row["reciprocal_rank"])
}
