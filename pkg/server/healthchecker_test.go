package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type staticChecker struct {
	name    string
	healthy bool
}

func (s staticChecker) Name() string                     { return s.name }
func (s staticChecker) Healthy(ctx context.Context) bool { return s.healthy }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []HealthChecker
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no checkers",
			wantStatus: http.StatusOK,
			wantBody:   `"status":"ok"`,
		},
		{
			name:       "all healthy",
			checkers:   []HealthChecker{NewOkHealthChecker(), staticChecker{"postgres", true}},
			wantStatus: http.StatusOK,
			wantBody:   `"postgres":"ok"`,
		},
		{
			name:       "one down",
			checkers:   []HealthChecker{NewOkHealthChecker(), staticChecker{"postgres", false}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"postgres":"unavailable"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

			assert.NoError(t, HealthHandler(tt.checkers...)(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
