package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/search-eval/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(opts ...EvalRouterOption) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewEvalRouter(e, opts...).Bind()
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const scenarioBody = `{
	"search_result": [
		{"filename": "doc2.pdf", "page_number": 1},
		{"filename": "doc1.pdf", "page_number": 2},
		{"filename": "doc3.pdf", "page_number": 5}
	],
	"ground_truth": [{"filename": "doc1.pdf", "page_number": "2"}]
}`

func TestEvaluateHandler(t *testing.T) {
	e := newTestEcho()

	t.Run("default set", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate", scenarioBody)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp EvaluateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Metrics, 11)
		assert.InDelta(t, 1.0/3.0, resp.Metrics["precision_at_3"], 1e-9)
		assert.InDelta(t, 1.0, resp.Metrics["recall_at_3"], 1e-9)
		assert.InDelta(t, 0.5, resp.Metrics["f1_score_at_3"], 1e-9)
		assert.InDelta(t, 0.5, resp.Metrics["average_precision"], 1e-9)
		assert.InDelta(t, 0.5, resp.Metrics["reciprocal_rank"], 1e-9)
	})

	t.Run("selected evaluators", func(t *testing.T) {
		body := strings.Replace(scenarioBody, `"ground_truth"`, `"evaluators": ["precision@1", "rr"], "ground_truth"`, 1)
		rec := do(t, e, http.MethodPost, "/v1/evaluate", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp EvaluateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, map[string]float64{"precision_at_1": 0, "reciprocal_rank": 0.5}, resp.Metrics)
	})

	t.Run("malformed record", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate", `{
			"search_result": [{"filename": "doc1.pdf"}],
			"ground_truth": [{"filename": "doc1.pdf", "page_number": 2}]
		}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "page_number")
	})

	t.Run("unknown evaluator", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate", `{"evaluators": ["ndcg@10"]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-positive k", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate", `{"k_values": [0]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"field":"k_values"`)
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate", `{"search_result":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty inputs score zero", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate", `{"search_result": [], "ground_truth": []}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp EvaluateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		for key, v := range resp.Metrics {
			assert.Zero(t, v, key)
		}
	})
}

func TestEvaluateBatchHandler(t *testing.T) {
	e := newTestEcho(WithMaxBatchRows(2))

	t.Run("means", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate/batch", `{
			"evaluators": ["recall@3"],
			"rows": [
				{"search_result": [{"filename": "a.pdf", "page_number": 1}], "ground_truth": [{"filename": "a.pdf", "page_number": 1}]},
				{"search_result": [{"filename": "b.pdf", "page_number": 1}], "ground_truth": [{"filename": "a.pdf", "page_number": 1}]}
			]
		}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp BatchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Rows, 2)
		assert.Equal(t, 1.0, resp.Rows[0]["recall_at_3"])
		assert.Equal(t, 0.0, resp.Rows[1]["recall_at_3"])
		assert.InDelta(t, 0.5, resp.Means["recall_at_3"], 1e-9)
	})

	t.Run("empty rows", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate/batch", `{"rows": []}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too many rows", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate/batch", `{"rows": [{}, {}, {}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "at most 2")
	})

	t.Run("malformed row", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/evaluate/batch", `{
			"rows": [
				{"search_result": [{"filename": "a.pdf", "page_number": 1}], "ground_truth": [{"filename": "a.pdf", "page_number": 1}]},
				{"search_result": [{"page_number": 1}], "ground_truth": [{"filename": "a.pdf", "page_number": 1}]}
			]
		}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "row 1")
	})
}

func TestEvaluatorsHandler(t *testing.T) {
	e := newTestEcho()

	rec := do(t, e, http.MethodGet, "/v1/evaluators", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EvaluatorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Default, 11)
	assert.Contains(t, resp.Kinds, "found")
	assert.Equal(t, []string{"location", "url"}, resp.Schemes)
}
