// Package main Search Eval API
// @title Search Eval API
// @version 1.0
// @description Scores search results against ground truth with retrieval metrics
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/DjordjeVuckovic/search-eval/docs"
	"github.com/DjordjeVuckovic/search-eval/internal/config"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/tracking"
	"github.com/DjordjeVuckovic/search-eval/internal/logger"
	"github.com/DjordjeVuckovic/search-eval/internal/router"
	"github.com/DjordjeVuckovic/search-eval/internal/server"
	"github.com/DjordjeVuckovic/search-eval/internal/storage/pg"
	"github.com/DjordjeVuckovic/search-eval/pkg/config/env"
	pkgserver "github.com/DjordjeVuckovic/search-eval/pkg/server"
	"github.com/labstack/echo/v4"
)

const connectTimeout = 10 * time.Second

func main() {
	if err := env.LoadDotEnv(os.Getenv("APP_ENV"), "cmd/eval_api/.env"); err != nil {
		slog.Error("Failed to load .env", "error", err)
		os.Exit(1)
	}

	appCfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(appCfg.LogLevel, appCfg.LogFormat)

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	var healthCheckers []pkgserver.HealthChecker
	var pool *pg.ConnectionPool
	if appCfg.Postgres.ConnStr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		pool, err = pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: appCfg.Postgres.ConnStr})
		cancel()
		if err != nil {
			slog.Error("Failed to connect to tracking database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		healthCheckers = append(healthCheckers, pg.NewHealthChecker(pool))
	} else {
		healthCheckers = append(healthCheckers, pkgserver.NewOkHealthChecker())
	}

	s := server.New(sCfg, healthCheckers...).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupOpenApi("/swagger/*")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Search Eval API is running")
	})

	router.NewEvalRouter(s.Echo).Bind()
	if pool != nil {
		router.NewRunsRouter(s.Echo, tracking.NewPgSink(pool)).Bind()
		slog.Info("Run metrics endpoint enabled")
	}

	if err := s.Start(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
