package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/storage/pg"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSink stores runs in eval_runs and their metrics in eval_metrics.
type PgSink struct {
	db *pgxpool.Pool
}

func NewPgSink(pool *pg.ConnectionPool) *PgSink {
	return &PgSink{db: pool.GetConn()}
}

func (s *PgSink) Name() string { return "postgres" }

func (s *PgSink) LogMetrics(ctx context.Context, run Run, metrics map[string]float64) error {
	_, err := s.Save(ctx, run, metrics)
	return err
}

// Save inserts the run and its metrics in one transaction and returns the run id.
func (s *PgSink) Save(ctx context.Context, run Run, metrics map[string]float64) (uuid.UUID, error) {
	id := uuid.New()
	started := run.StartTime
	if started.IsZero() {
		started = time.Now()
	}

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO eval_runs (id, experiment, run_name, tags, params, started_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, run.Experiment, run.Name, nonNil(run.Tags), nonNil(run.Params), started.UTC())
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		batch := &pgx.Batch{}
		for k, v := range metrics {
			batch.Queue(`INSERT INTO eval_metrics (run_id, key, value) VALUES ($1, $2, $3)`, id, k, v)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert metrics: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("pg tracking: %w", err)
	}
	return id, nil
}

// Metrics loads the metrics stored for a run.
func (s *PgSink) Metrics(ctx context.Context, runID uuid.UUID) (map[string]float64, error) {
	rows, err := s.db.Query(ctx, `SELECT key, value FROM eval_metrics WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		out[key] = value
	}
	return out, rows.Err()
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
