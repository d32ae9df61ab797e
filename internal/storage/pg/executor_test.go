//go:build integration

package pg

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/storage"
	pkgtesting "github.com/DjordjeVuckovic/search-eval/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var (
	testCtx      context.Context
	testPool     *ConnectionPool
	testExecutor *RawExecutor
)

func TestMain(m *testing.M) {
	testCtx = context.Background()

	c, err := pkgtesting.NewPGContainer(testCtx, pkgtesting.PGConfig{})
	if err != nil {
		panic(err)
	}

	testPool, err = NewConnectionPool(testCtx, PoolConfig{ConnStr: c.ConnString, ConnectTimeout: 5 * time.Second})
	if err != nil {
		_ = testcontainers.TerminateContainer(c.Container)
		panic(err)
	}
	testExecutor = NewRawExecutor(testPool)

	code := m.Run()
	testPool.Close()
	_ = testcontainers.TerminateContainer(c.Container)
	os.Exit(code)
}

func truncatePages(t *testing.T) {
	t.Helper()
	pkgtesting.Truncate(testCtx, t, testPool, "search_pages")
}

func insertPage(t *testing.T, filename string, page int, content string) {
	t.Helper()
	_, err := testPool.GetConn().Exec(testCtx,
		`INSERT INTO search_pages (filename, page_number, content) VALUES ($1, $2, $3)`,
		filename, page, content)
	require.NoError(t, err)
}

func TestRawExecutor_Query_FullTextQuery(t *testing.T) {
	truncatePages(t)
	t.Cleanup(func() { truncatePages(t) })

	insertPage(t, "manual.pdf", 12, "The warranty period is two years from purchase")
	insertPage(t, "manual.pdf", 13, "Cleaning and maintenance of the filter")
	insertPage(t, "guide.pdf", 3, "Warranty claims require the original receipt")

	result, err := testExecutor.Query(testCtx, `
		SELECT filename, page_number
		FROM search_pages
		WHERE tsv @@ plainto_tsquery('english', $1::text)
		ORDER BY ts_rank(tsv, plainto_tsquery('english', $1::text)) DESC, id
		LIMIT $2`,
		[]any{"warranty", 10}, storage.QueryOptions{})
	require.NoError(t, err)

	assert.False(t, result.Truncated)
	require.Len(t, result.Rows, 2)
	for _, row := range result.Rows {
		assert.Contains(t, row, "filename")
		assert.Contains(t, row, "page_number")
	}
}

func TestRawExecutor_Query_Limit(t *testing.T) {
	truncatePages(t)
	t.Cleanup(func() { truncatePages(t) })

	for i := 1; i <= 5; i++ {
		insertPage(t, "manual.pdf", i, "filter replacement steps")
	}

	result, err := testExecutor.Query(testCtx,
		`SELECT filename, page_number FROM search_pages WHERE tsv @@ plainto_tsquery('english', $1::text) ORDER BY page_number LIMIT $2`,
		[]any{"filter", 3}, storage.QueryOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)
	assert.EqualValues(t, 1, result.Rows[0]["page_number"])
}

func TestRawExecutor_Query_MaxRows(t *testing.T) {
	truncatePages(t)
	t.Cleanup(func() { truncatePages(t) })

	for i := 1; i <= 4; i++ {
		insertPage(t, "guide.pdf", i, "descaling the kettle")
	}

	result, err := testExecutor.Query(testCtx,
		`SELECT filename, page_number FROM search_pages ORDER BY page_number`,
		nil, storage.QueryOptions{MaxRows: 2})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	require.Len(t, result.Rows, 2)
	assert.EqualValues(t, 2, result.Rows[1]["page_number"])
}

func TestRawExecutor_Query_EmptyResults(t *testing.T) {
	truncatePages(t)

	result, err := testExecutor.Query(testCtx,
		`SELECT filename FROM search_pages WHERE filename = $1`, []any{"missing.pdf"}, storage.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestRawExecutor_Query_InvalidQuery(t *testing.T) {
	_, err := testExecutor.Query(testCtx, `SELECT * FROM no_such_table`, nil, storage.QueryOptions{})
	assert.ErrorContains(t, err, "query")
}

func TestHealthChecker(t *testing.T) {
	assert.True(t, NewHealthChecker(testPool).Healthy(testCtx))
	assert.False(t, NewHealthChecker(nil).Healthy(testCtx))
}
