package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// NamedHealthChecker reports under its own key in the health response.
type NamedHealthChecker interface {
	HealthChecker
	Name() string
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler answers 200 when every checker is healthy and 503 otherwise.
func HealthHandler(checkers ...HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		resp := HealthResponse{Status: "ok"}
		code := http.StatusOK

		for i, hc := range checkers {
			status := "ok"
			if !hc.Healthy(ctx) {
				status = "unavailable"
				resp.Status = "unavailable"
				code = http.StatusServiceUnavailable
			}
			if named, ok := hc.(NamedHealthChecker); ok {
				if resp.Checks == nil {
					resp.Checks = make(map[string]string)
				}
				resp.Checks[named.Name()] = status
			} else if status != "ok" {
				if resp.Checks == nil {
					resp.Checks = make(map[string]string)
				}
				resp.Checks[checkerKey(i)] = status
			}
		}

		return c.JSON(code, resp)
	}
}

func checkerKey(i int) string {
	return "checker_" + strconv.Itoa(i)
}
