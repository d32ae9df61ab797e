package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/storage/es"
	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/testcontainers/testcontainers-go"
	tcelastic "github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultESImage = "docker.elastic.co/elasticsearch/elasticsearch:8.19.0"

type ESContainer struct {
	Container testcontainers.Container
	Address   string
}

// Client returns a typed client bound to the container and the given index.
func (c *ESContainer) Client(tb testing.TB, index string) *elasticsearch.TypedClient {
	tb.Helper()

	client, err := es.NewClient(es.ClientConfig{Addresses: []string{c.Address}, IndexName: index})
	if err != nil {
		tb.Fatalf("failed to create elasticsearch client: %v", err)
	}
	return client
}

// IndexDocuments indexes docs into index and refreshes it so they are searchable at once.
func (c *ESContainer) IndexDocuments(ctx context.Context, tb testing.TB, index string, docs []map[string]any) {
	tb.Helper()

	client := c.Client(tb, index)
	for i, doc := range docs {
		if _, err := client.Index(index).Document(doc).Do(ctx); err != nil {
			tb.Fatalf("index document %d: %v", i, err)
		}
	}
	if _, err := client.Indices.Refresh().Index(index).Do(ctx); err != nil {
		tb.Fatalf("refresh index %s: %v", index, err)
	}
}

// NewESContainer starts a single-node Elasticsearch with security disabled.
func NewESContainer(ctx context.Context, tb testing.TB) *ESContainer {
	tb.Helper()

	esContainer, err := tcelastic.Run(ctx,
		defaultESImage,
		tcelastic.WithPassword(""),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/").
				WithPort("9200").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		tb.Fatalf("failed to start elasticsearch container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(esContainer); err != nil {
			tb.Logf("failed to terminate elasticsearch container: %v", err)
		}
	})

	host, err := esContainer.Host(ctx)
	if err != nil {
		tb.Fatalf("failed to get elasticsearch host: %v", err)
	}

	port, err := esContainer.MappedPort(ctx, "9200")
	if err != nil {
		tb.Fatalf("failed to get elasticsearch port: %v", err)
	}

	address := fmt.Sprintf("http://%s:%s", host, port.Port())

	return &ESContainer{
		Container: esContainer,
		Address:   address,
	}
}
