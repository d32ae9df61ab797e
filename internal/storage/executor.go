package storage

import (
	"context"
	"time"
)

type QueryOptions struct {
	Timeout time.Duration
	// MaxRows stops reading after this many rows. Zero reads everything.
	MaxRows int
}

// QueryResult holds rows keyed by column name, in the order the backend returned them.
type QueryResult struct {
	Rows      []map[string]any
	Truncated bool
}

// RawExecutor runs a parameterized query against a search backend.
type RawExecutor interface {
	// Query binds params to the query placeholders in order.
	Query(ctx context.Context, query string, params []any, opts QueryOptions) (*QueryResult, error)
}
