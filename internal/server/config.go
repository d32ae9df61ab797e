package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/search-eval/pkg/stringsutil"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultPort        = "8080"
	DefaultBodyLimit   = "8M"
	DefaultReadTimeout = 30 * time.Second
)

type Config struct {
	Port        string
	UseHttp2    bool
	CorsOrigins []string
	BodyLimit   string
	ReadTimeout time.Duration
}

type envConfig struct {
	Port        string        `envconfig:"PORT"`
	UseHttp2    bool          `envconfig:"USE_HTTP2"`
	CorsOrigins string        `envconfig:"CORS_ORIGINS"`
	BodyLimit   string        `envconfig:"BODY_LIMIT"`
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT"`
}

// LoadConfig reads PORT, USE_HTTP2, CORS_ORIGINS, BODY_LIMIT and READ_TIMEOUT.
// Unset or empty values fall back to the defaults.
func LoadConfig() (*Config, error) {
	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("process server env: %w", err)
	}

	cfg := &Config{
		Port:        valueOr(env.Port, DefaultPort),
		UseHttp2:    env.UseHttp2,
		CorsOrigins: stringsutil.Dedupe(stringsutil.SplitList(env.CorsOrigins, ",")),
		BodyLimit:   valueOr(env.BodyLimit, DefaultBodyLimit),
		ReadTimeout: env.ReadTimeout,
	}
	if err := validatePort(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}
	if len(cfg.CorsOrigins) == 0 {
		cfg.CorsOrigins = []string{"*"}
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	return cfg, nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return errors.New("port must be a number")
	}
	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}
