package config

import (
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/kelseyhightower/envconfig"
)

// Config holds settings read from the environment.
// Values set here fill in what an evaluation spec leaves out.
type Config struct {
	Env       string `envconfig:"APP_ENV" default:"local"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	Azure    AzureConfig
	Build    BuildConfig
	Mlflow   MlflowConfig
	Postgres PostgresConfig
}

type AzureConfig struct {
	Endpoint       string `envconfig:"AZURE_SEARCH_ENDPOINT"`
	Key            string `envconfig:"AZURE_SEARCH_KEY"`
	Index          string `envconfig:"AZURE_SEARCH_INDEX"`
	APIVersion     string `envconfig:"AZURE_SEARCH_API_VERSION"`
	SemanticConfig string `envconfig:"AZURE_SEARCH_SEMANTIC_CONFIG"`
}

type BuildConfig struct {
	SourceBranch string `envconfig:"BUILD_SOURCEBRANCHNAME"`
	BuildID      string `envconfig:"BUILD_BUILDID"`
}

type MlflowConfig struct {
	TrackingURI string `envconfig:"MLFLOW_TRACKING_URI"`
	Token       string `envconfig:"MLFLOW_TRACKING_TOKEN"`
}

type PostgresConfig struct {
	ConnStr string `envconfig:"EVAL_DB_URL"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", cfg.LogFormat)
	}

	return &cfg, nil
}

func (c AzureConfig) Configured() bool {
	return c.Endpoint != "" && c.Index != ""
}

// Target converts the Azure settings into a spec target.
func (c AzureConfig) Target() spec.Target {
	return spec.Target{
		Type:           spec.TargetAzureSearch,
		Connection:     c.Endpoint,
		Index:          c.Index,
		APIKey:         c.Key,
		APIVersion:     c.APIVersion,
		SemanticConfig: c.SemanticConfig,
	}
}

// Sinks lists the tracking sinks implied by the environment.
func (c *Config) Sinks() []spec.Sink {
	var sinks []spec.Sink
	if c.Mlflow.TrackingURI != "" {
		sinks = append(sinks, spec.Sink{Type: spec.SinkMlflow, URI: c.Mlflow.TrackingURI})
	}
	if c.Postgres.ConnStr != "" {
		sinks = append(sinks, spec.Sink{Type: spec.SinkPostgres, URI: c.Postgres.ConnStr})
	}
	return sinks
}
