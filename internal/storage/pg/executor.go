package pg

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/search-eval/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RawExecutor struct {
	db *pgxpool.Pool
}

func NewRawExecutor(pool *ConnectionPool) *RawExecutor {
	return &RawExecutor{db: pool.GetConn()}
}

func (e *RawExecutor) Query(ctx context.Context, query string, params []any, opts storage.QueryOptions) (*storage.QueryResult, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rows, err := e.db.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	result := &storage.QueryResult{}
	for rows.Next() {
		if opts.MaxRows > 0 && len(result.Rows) == opts.MaxRows {
			result.Truncated = true
			break
		}
		row, err := pgx.RowToMap(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(result.Rows), err)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return result, nil
}

var _ storage.RawExecutor = (*RawExecutor)(nil)
