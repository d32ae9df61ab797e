package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
)

const (
	DefaultAzureAPIVersion  = "2024-07-01"
	DefaultAzureVectorField = "content_vector"
)

type AzureConfig struct {
	Endpoint       string
	Index          string
	APIKey         string
	APIVersion     string
	SemanticConfig string
	VectorFields   string
	Fields         []string
	Timeout        time.Duration
}

// AzureSearchTarget runs hybrid (text + vectorized text) queries against an
// Azure AI Search index, with semantic ranking when a semantic configuration is set.
type AzureSearchTarget struct {
	name   string
	cfg    AzureConfig
	client *http.Client
}

func NewAzureSearchTarget(name string, cfg AzureConfig) (*AzureSearchTarget, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure search: endpoint is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("azure search: index is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAzureAPIVersion
	}
	if cfg.VectorFields == "" {
		cfg.VectorFields = DefaultAzureVectorField
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = DefaultFields
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	return &AzureSearchTarget{
		name:   name,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type azureVectorQuery struct {
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Fields     string `json:"fields"`
	K          int    `json:"k"`
	Exhaustive bool   `json:"exhaustive"`
}

type azureSearchRequest struct {
	Search                string             `json:"search"`
	Top                   int                `json:"top"`
	Count                 bool               `json:"count"`
	Select                string             `json:"select,omitempty"`
	QueryType             string             `json:"queryType,omitempty"`
	SemanticConfiguration string             `json:"semanticConfiguration,omitempty"`
	Captions              string             `json:"captions,omitempty"`
	Answers               string             `json:"answers,omitempty"`
	VectorQueries         []azureVectorQuery `json:"vectorQueries,omitempty"`
}

type azureSearchResponse struct {
	Count *int64           `json:"@odata.count"`
	Value []map[string]any `json:"value"`
}

func (t *AzureSearchTarget) buildRequest(query string, top int) azureSearchRequest {
	req := azureSearchRequest{
		Search: query,
		Top:    top,
		Count:  true,
		Select: strings.Join(t.cfg.Fields, ","),
		VectorQueries: []azureVectorQuery{{
			Kind:       "text",
			Text:       query,
			Fields:     t.cfg.VectorFields,
			K:          1,
			Exhaustive: true,
		}},
	}
	if t.cfg.SemanticConfig != "" {
		req.QueryType = "semantic"
		req.SemanticConfiguration = t.cfg.SemanticConfig
		req.Captions = "extractive"
		req.Answers = "extractive"
	}
	return req
}

func (t *AzureSearchTarget) Search(ctx context.Context, query string, top int) (*Execution, error) {
	if top <= 0 {
		top = DefaultTop
	}

	payload, err := json.Marshal(t.buildRequest(query, top))
	if err != nil {
		return nil, fmt.Errorf("azure search marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/indexes/%s/docs/search?%s",
		t.cfg.Endpoint,
		url.PathEscape(t.cfg.Index),
		url.Values{"api-version": {t.cfg.APIVersion}}.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("azure search create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.cfg.APIKey != "" {
		httpReq.Header.Set("api-key", t.cfg.APIKey)
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("azure search request: %w", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure search read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure search status %d: %s", resp.StatusCode, string(body))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var searchResp azureSearchResponse
	if err := dec.Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("azure search parse response: %w", err)
	}

	results := make([]docid.Record, 0, len(searchResp.Value))
	for _, doc := range searchResp.Value {
		results = append(results, selectFields(doc, t.cfg.Fields))
	}

	total := int64(len(results))
	if searchResp.Count != nil {
		total = *searchResp.Count
	}

	return &Execution{
		Results:      results,
		TotalMatches: total,
		Latency:      latency,
	}, nil
}

func (t *AzureSearchTarget) Name() string { return t.name }
func (t *AzureSearchTarget) Close() error { return nil }
