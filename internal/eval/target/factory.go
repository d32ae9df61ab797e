package target

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/DjordjeVuckovic/search-eval/internal/storage/es"
	"github.com/DjordjeVuckovic/search-eval/internal/storage/pg"
	"github.com/DjordjeVuckovic/search-eval/pkg/stringsutil"
)

// CreateFromSpec builds a target per spec entry. The returned cleanup releases
// every connection opened along the way and is safe to call once.
func CreateFromSpec(ctx context.Context, targets map[string]spec.Target) (map[string]Target, func(), error) {
	created := make(map[string]Target, len(targets))
	var cleanups []func()

	cleanup := func() {
		for _, t := range created {
			_ = t.Close()
		}
		for _, c := range cleanups {
			c()
		}
	}

	for name, cfg := range targets {
		t, closeFn, err := create(ctx, name, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if closeFn != nil {
			cleanups = append(cleanups, closeFn)
		}
		created[name] = t
	}

	return created, cleanup, nil
}

func create(ctx context.Context, name string, cfg spec.Target) (Target, func(), error) {
	switch cfg.Type {
	case spec.TargetAzureSearch:
		t, err := NewAzureSearchTarget(name, AzureConfig{
			Endpoint:       cfg.Connection,
			Index:          cfg.Index,
			APIKey:         cfg.APIKey,
			APIVersion:     cfg.APIVersion,
			SemanticConfig: cfg.SemanticConfig,
			VectorFields:   cfg.VectorFields,
			Fields:         cfg.Fields,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create azure search target %q: %w", name, err)
		}
		return t, nil, nil

	case spec.TargetElasticsearch:
		t, err := NewEsTarget(name, EsConfig{
			Client: es.ClientConfig{
				Addresses: stringsutil.SplitList(cfg.Connection, ","),
				IndexName: cfg.Index,
				Username:  cfg.Username,
				Password:  cfg.Password,
				APIKey:    cfg.APIKey,
			},
			SearchFields: cfg.SearchFields,
			Fields:       cfg.Fields,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create elasticsearch target %q: %w", name, err)
		}
		return t, nil, nil

	case spec.TargetPostgres:
		pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.Connection})
		if err != nil {
			return nil, nil, fmt.Errorf("create pg pool for %q: %w", name, err)
		}
		return NewPgTarget(name, cfg.Query, cfg.Fields, pool), pool.Close, nil

	case spec.TargetAPI:
		return NewAPITarget(name, cfg.Connection, cfg.APIKey, cfg.Fields), nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported target type %q for %q", cfg.Type, name)
	}
}
