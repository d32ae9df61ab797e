package router

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/DjordjeVuckovic/search-eval/internal/apperr"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	runs map[uuid.UUID]map[string]float64
	err  error
}

func (f fakeStore) Metrics(ctx context.Context, runID uuid.UUID) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.runs[runID], nil
}

func TestRunsRouter(t *testing.T) {
	known := uuid.New()
	store := fakeStore{runs: map[uuid.UUID]map[string]float64{
		known: {"recall_at_3": 0.75},
	}}

	newEcho := func(s MetricsStore) *echo.Echo {
		e := echo.New()
		e.HTTPErrorHandler = apperr.GlobalErrorHandler()
		NewRunsRouter(e, s).Bind()
		return e
	}

	tests := []struct {
		name       string
		store      MetricsStore
		id         string
		wantStatus int
		wantBody   string
	}{
		{name: "found", store: store, id: known.String(), wantStatus: http.StatusOK, wantBody: `"recall_at_3":0.75`},
		{name: "unknown run", store: store, id: uuid.NewString(), wantStatus: http.StatusNotFound},
		{name: "bad id", store: store, id: "run-1", wantStatus: http.StatusBadRequest},
		{name: "store failure", store: fakeStore{err: errors.New("db down")}, id: known.String(), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newEcho(tt.store), http.MethodGet, "/v1/runs/"+tt.id+"/metrics", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
