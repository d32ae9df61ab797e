package runner

import (
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
)

const (
	DefaultTop         = 10
	DefaultConcurrency = 1
	DefaultWarmupRuns  = 0
	DefaultRuns        = 1
)

type Config struct {
	Top               int
	Concurrency       int
	RequestsPerSecond float64
	WarmupRuns        int
	Runs              int
	Retries           int
	Timeout           time.Duration
}

func DefaultConfig() Config {
	return Config{
		Top:         DefaultTop,
		Concurrency: DefaultConcurrency,
		WarmupRuns:  DefaultWarmupRuns,
		Runs:        DefaultRuns,
	}
}

func ConfigFromSpec(rc spec.RunsConfig) Config {
	cfg := Config{
		Top:               rc.Top,
		Concurrency:       rc.Concurrency,
		RequestsPerSecond: rc.RequestsPerSecond,
		WarmupRuns:        rc.Warmup,
		Runs:              rc.Iterations,
		Retries:           rc.Retries,
		Timeout:           time.Duration(rc.TimeoutSeconds) * time.Second,
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Top <= 0 {
		c.Top = DefaultTop
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.WarmupRuns < 0 {
		c.WarmupRuns = 0
	}
	if c.Runs <= 0 {
		c.Runs = DefaultRuns
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	return c
}
