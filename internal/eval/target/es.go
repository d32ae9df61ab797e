package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/DjordjeVuckovic/search-eval/internal/storage/es"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

var DefaultEsSearchFields = []string{"content", "title"}

type EsConfig struct {
	Client       es.ClientConfig
	SearchFields []string
	Fields       []string
}

// EsTarget runs a multi_match query over SearchFields and keeps Fields of each hit's _source.
type EsTarget struct {
	name         string
	client       *elasticsearch.TypedClient
	index        string
	searchFields []string
	fields       []string
}

func NewEsTarget(name string, cfg EsConfig) (*EsTarget, error) {
	if cfg.Client.IndexName == "" {
		return nil, fmt.Errorf("elasticsearch: index is required")
	}
	client, err := es.NewClient(cfg.Client)
	if err != nil {
		return nil, err
	}
	return newEsTarget(name, client, cfg), nil
}

func newEsTarget(name string, client *elasticsearch.TypedClient, cfg EsConfig) *EsTarget {
	searchFields := cfg.SearchFields
	if len(searchFields) == 0 {
		searchFields = DefaultEsSearchFields
	}
	fields := cfg.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}
	return &EsTarget{
		name:         name,
		client:       client,
		index:        cfg.Client.IndexName,
		searchFields: searchFields,
		fields:       fields,
	}
}

func (t *EsTarget) Search(ctx context.Context, query string, top int) (*Execution, error) {
	if top <= 0 {
		top = DefaultTop
	}

	start := time.Now()
	res, err := t.client.Search().
		Index(t.index).
		Query(&types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  query,
				Fields: t.searchFields,
			},
		}).
		Size(top).
		Do(ctx)
	if err != nil {
		slog.Error("Elasticsearch query failed", "target", t.name, "error", err)
		return nil, fmt.Errorf("es search: %w", err)
	}
	latency := time.Since(start)

	results := make([]docid.Record, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		dec := json.NewDecoder(bytes.NewReader(hit.Source_))
		dec.UseNumber()
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("es parse hit source: %w", err)
		}
		results = append(results, selectFields(doc, t.fields))
	}

	total := int64(len(results))
	if res.Hits.Total != nil {
		total = res.Hits.Total.Value
	}

	return &Execution{
		Results:      results,
		TotalMatches: total,
		Latency:      latency,
	}, nil
}

func (t *EsTarget) Name() string { return t.name }
func (t *EsTarget) Close() error { return nil }
