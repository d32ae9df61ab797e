package target

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/DjordjeVuckovic/search-eval/internal/storage"
	"github.com/DjordjeVuckovic/search-eval/internal/storage/pg"
)

// PgTarget runs a parameterized SQL search: $1 is the query text and $2 the result limit.
// Every returned column becomes a field of the result record, and rows past the limit
// are dropped even when the SQL has no LIMIT clause.
type PgTarget struct {
	name     string
	query    string
	fields   []string
	executor storage.RawExecutor
}

func NewPgTarget(name, query string, fields []string, pool *pg.ConnectionPool) *PgTarget {
	return newPgTarget(name, query, fields, pg.NewRawExecutor(pool))
}

func newPgTarget(name, query string, fields []string, executor storage.RawExecutor) *PgTarget {
	return &PgTarget{
		name:     name,
		query:    query,
		fields:   fields,
		executor: executor,
	}
}

func (t *PgTarget) Search(ctx context.Context, query string, top int) (*Execution, error) {
	if top <= 0 {
		top = DefaultTop
	}

	start := time.Now()
	result, err := t.executor.Query(ctx, t.query, []any{query, top}, storage.QueryOptions{MaxRows: top})
	if err != nil {
		return nil, fmt.Errorf("pg search: %w", err)
	}
	latency := time.Since(start)

	results := make([]docid.Record, 0, len(result.Rows))
	for _, row := range result.Rows {
		results = append(results, selectFields(row, t.fields))
	}

	return &Execution{
		Results:      results,
		TotalMatches: int64(len(results)),
		Latency:      latency,
	}, nil
}

func (t *PgTarget) Name() string { return t.name }
func (t *PgTarget) Close() error { return nil }
