package router

import (
	"fmt"
	"net/http"

	"github.com/DjordjeVuckovic/search-eval/internal/apperr"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/evaluator"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/labstack/echo/v4"
)

const DefaultMaxBatchRows = 10000

type EvalRouter struct {
	e            *echo.Echo
	maxBatchRows int
}

type EvalRouterOption func(*EvalRouter)

func WithMaxBatchRows(n int) EvalRouterOption {
	return func(r *EvalRouter) {
		if n > 0 {
			r.maxBatchRows = n
		}
	}
}

func NewEvalRouter(e *echo.Echo, opts ...EvalRouterOption) *EvalRouter {
	r := &EvalRouter{e: e, maxBatchRows: DefaultMaxBatchRows}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *EvalRouter) Bind() {
	g := r.e.Group("/v1")
	g.POST("/evaluate", r.evaluateHandler)
	g.POST("/evaluate/batch", r.evaluateBatchHandler)
	g.GET("/evaluators", r.evaluatorsHandler)
}

// MetricsOptions selects the evaluators for a request. Empty means the default set.
type MetricsOptions struct {
	Evaluators []string `json:"evaluators,omitempty" example:"recall@5,average_precision"`
	KValues    []int    `json:"k_values,omitempty"`
	FoundK     int      `json:"found_k,omitempty"`
	Scheme     string   `json:"scheme,omitempty" example:"location"`
}

type EvaluateRequest struct {
	SearchResult []docid.Record `json:"search_result"`
	GroundTruth  []docid.Record `json:"ground_truth"`
	Truth        docid.Record   `json:"truth,omitempty"`
	MetricsOptions
}

type EvaluateResponse struct {
	Metrics map[string]float64 `json:"metrics"`
}

type BatchRequest struct {
	Rows []evaluator.Input `json:"rows"`
	MetricsOptions
}

type BatchResponse struct {
	Rows  []map[string]float64 `json:"rows"`
	Means map[string]float64   `json:"means"`
	Count int                  `json:"count"`
}

type EvaluatorsResponse struct {
	Default []string `json:"default"`
	Kinds   []string `json:"kinds"`
	Schemes []string `json:"schemes"`
}

// evaluateHandler godoc
// @Summary Score one search result
// @Description Runs the selected evaluators on one search result against its ground truth and returns a merged metric row
// @Tags evaluate
// @Accept json
// @Produce json
// @Param request body EvaluateRequest true "Search result and ground truth"
// @Success 200 {object} EvaluateResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Router /v1/evaluate [post]
func (r *EvalRouter) evaluateHandler(c echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}

	set, err := req.evaluatorSet()
	if err != nil {
		return err
	}

	row, err := set.Invoke(evaluator.Input{SearchResult: req.SearchResult, GroundTruth: req.GroundTruth, Truth: req.Truth})
	if err != nil {
		return apperr.NewValidationWrap("malformed record", err)
	}

	return c.JSON(http.StatusOK, EvaluateResponse{Metrics: row})
}

// evaluateBatchHandler godoc
// @Summary Score many search results
// @Description Scores every row and returns the per-row metrics with their means
// @Tags evaluate
// @Accept json
// @Produce json
// @Param request body BatchRequest true "Rows of search result and ground truth"
// @Success 200 {object} BatchResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Router /v1/evaluate/batch [post]
func (r *EvalRouter) evaluateBatchHandler(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}
	if len(req.Rows) == 0 {
		return apperr.NewFieldValidation("rows", "rows must not be empty")
	}
	if len(req.Rows) > r.maxBatchRows {
		return apperr.NewFieldValidation("rows", fmt.Sprintf("at most %d rows per batch", r.maxBatchRows))
	}

	set, err := req.evaluatorSet()
	if err != nil {
		return err
	}

	rows := make([]map[string]float64, 0, len(req.Rows))
	for i, in := range req.Rows {
		row, err := set.Invoke(in)
		if err != nil {
			return &apperr.ValidationError{Message: fmt.Sprintf("malformed record in row %d", i), Field: "rows", Err: err}
		}
		rows = append(rows, row)
	}

	return c.JSON(http.StatusOK, BatchResponse{
		Rows:  rows,
		Means: set.Mean(rows),
		Count: len(rows),
	})
}

// evaluatorsHandler godoc
// @Summary List evaluators
// @Description Returns the default evaluator keys with the supported kinds and identifier schemes
// @Tags evaluate
// @Produce json
// @Success 200 {object} EvaluatorsResponse
// @Router /v1/evaluators [get]
func (r *EvalRouter) evaluatorsHandler(c echo.Context) error {
	kinds := make([]string, 0, len(evaluator.Kinds()))
	for _, k := range evaluator.Kinds() {
		kinds = append(kinds, k.String())
	}

	return c.JSON(http.StatusOK, EvaluatorsResponse{
		Default: evaluator.DefaultSet().Keys(),
		Kinds:   kinds,
		Schemes: []string{string(docid.SchemeLocation), string(docid.SchemeURL)},
	})
}

func (o MetricsOptions) evaluatorSet() (*evaluator.Set, error) {
	for _, k := range o.KValues {
		if k <= 0 {
			return nil, apperr.NewFieldValidation("k_values", fmt.Sprintf("k must be positive, got %d", k))
		}
	}
	if o.FoundK < 0 {
		return nil, apperr.NewFieldValidation("found_k", "found_k must not be negative")
	}

	mc := spec.MetricsConfig{
		Evaluators: o.Evaluators,
		KValues:    o.KValues,
		FoundK:     o.FoundK,
		Scheme:     o.Scheme,
	}
	set, err := mc.EvaluatorSet()
	if err != nil {
		return nil, apperr.NewValidationWrap("invalid evaluator selection", err)
	}
	return set, nil
}
