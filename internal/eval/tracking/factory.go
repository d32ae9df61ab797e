package tracking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/DjordjeVuckovic/search-eval/internal/storage/pg"
)

type Options struct {
	MlflowToken string
	Logger      *slog.Logger
}

// CreateFromSpec builds every configured sink plus a log sink.
// Sinks of the same type and uri are created once. The cleanup func releases database pools.
func CreateFromSpec(ctx context.Context, sinks []spec.Sink, opts Options) (*MultiSink, func(), error) {
	var (
		created  []Sink
		cleanups []func()
		hasLog   bool
	)
	cleanup := func() {
		for _, c := range cleanups {
			c()
		}
	}

	seen := make(map[spec.Sink]bool, len(sinks))
	for _, cfg := range sinks {
		if seen[cfg] {
			continue
		}
		seen[cfg] = true

		switch cfg.Type {
		case spec.SinkLog:
			hasLog = true
			created = append(created, NewLogSink(opts.Logger))
		case spec.SinkMlflow:
			sink, err := NewMlflowSink(cfg.URI, opts.MlflowToken)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			created = append(created, sink)
		case spec.SinkPostgres:
			pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.URI, MaxConns: 2})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("postgres tracking sink: %w", err)
			}
			cleanups = append(cleanups, pool.Close)
			created = append(created, NewPgSink(pool))
		default:
			cleanup()
			return nil, nil, fmt.Errorf("unknown tracking sink type %q", cfg.Type)
		}
		slog.Debug("tracking sink created", "type", cfg.Type)
	}

	if !hasLog {
		created = append(created, NewLogSink(opts.Logger))
	}

	return NewMultiSink(created...), cleanup, nil
}
