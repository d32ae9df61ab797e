package es

import (
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

type ClientConfig struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
	APIKey    string
	// MaxRetries applies to throttled and unavailable responses. Zero keeps the client default.
	MaxRetries int
}

// retryStatuses are the responses worth retrying while an evaluation hammers the cluster.
var retryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

func NewClient(config ClientConfig) (*elasticsearch.TypedClient, error) {
	if len(config.Addresses) == 0 {
		return nil, fmt.Errorf("elasticsearch: at least one address is required")
	}

	cfg := elasticsearch.Config{
		Addresses:     config.Addresses,
		RetryOnStatus: retryStatuses,
		MaxRetries:    config.MaxRetries,
	}

	switch {
	case config.APIKey != "":
		cfg.APIKey = config.APIKey
	case config.Username != "" && config.Password != "":
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewTypedClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}
