package router

import (
	"context"
	"net/http"

	"github.com/DjordjeVuckovic/search-eval/internal/apperr"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MetricsStore reads back metrics recorded by a tracking sink.
type MetricsStore interface {
	Metrics(ctx context.Context, runID uuid.UUID) (map[string]float64, error)
}

type RunsRouter struct {
	e     *echo.Echo
	store MetricsStore
}

func NewRunsRouter(e *echo.Echo, store MetricsStore) *RunsRouter {
	return &RunsRouter{e: e, store: store}
}

func (r *RunsRouter) Bind() {
	r.e.GET("/v1/runs/:id/metrics", r.metricsHandler)
}

type RunMetricsResponse struct {
	RunID   string             `json:"run_id"`
	Metrics map[string]float64 `json:"metrics"`
}

// metricsHandler godoc
// @Summary Get tracked run metrics
// @Description Returns the aggregated metrics stored for an evaluation run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} RunMetricsResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /v1/runs/{id}/metrics [get]
func (r *RunsRouter) metricsHandler(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NewFieldValidation("id", "run id must be a UUID")
	}

	metrics, err := r.store.Metrics(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if len(metrics) == 0 {
		return apperr.NewNotFound("run", id.String())
	}

	return c.JSON(http.StatusOK, RunMetricsResponse{RunID: id.String(), Metrics: metrics})
}
