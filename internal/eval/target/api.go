package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
)

// APITarget posts {"query", "top"} to an HTTP search endpoint that answers
// {"results": [...], "total_matches": n}.
type APITarget struct {
	name     string
	endpoint string
	apiKey   string
	fields   []string
	client   *http.Client
}

func NewAPITarget(name, endpoint, apiKey string, fields []string) *APITarget {
	return &APITarget{
		name:     name,
		endpoint: endpoint,
		apiKey:   apiKey,
		fields:   fields,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type apiRequest struct {
	Query string `json:"query"`
	Top   int    `json:"top"`
}

type apiResponse struct {
	TotalMatches *int64           `json:"total_matches,omitempty"`
	Results      []map[string]any `json:"results"`
}

func (t *APITarget) Search(ctx context.Context, query string, top int) (*Execution, error) {
	if top <= 0 {
		top = DefaultTop
	}

	payload, err := json.Marshal(apiRequest{Query: query, Top: top})
	if err != nil {
		return nil, fmt.Errorf("api marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("api create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api status %d: %s", resp.StatusCode, string(body))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var searchResp apiResponse
	if err := dec.Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("api parse response: %w", err)
	}

	results := make([]docid.Record, 0, len(searchResp.Results))
	for _, doc := range searchResp.Results {
		results = append(results, selectFields(doc, t.fields))
	}

	total := int64(len(results))
	if searchResp.TotalMatches != nil {
		total = *searchResp.TotalMatches
	}

	return &Execution{
		Results:      results,
		TotalMatches: total,
		Latency:      latency,
	}, nil
}

func (t *APITarget) Name() string { return t.name }
func (t *APITarget) Close() error { return nil }
