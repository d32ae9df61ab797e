package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/storage/pg"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultPGImage = "postgres:17.5"

// PGConfig describes the throwaway database. Empty fields take test defaults.
type PGConfig struct {
	Image    string
	Database string
	Username string
	Password string
}

func (c PGConfig) withDefaults() PGConfig {
	if c.Image == "" {
		c.Image = defaultPGImage
	}
	if c.Database == "" {
		c.Database = "search_eval_test"
	}
	if c.Username == "" {
		c.Username = "test"
	}
	if c.Password == "" {
		c.Password = "test"
	}
	return c
}

// PGContainer is a postgres container with the db/migrations schema applied.
type PGContainer struct {
	Container  testcontainers.Container
	ConnString string
}

func NewPGContainer(ctx context.Context, cfg PGConfig) (*PGContainer, error) {
	cfg = cfg.withDefaults()

	initScript, err := writeInitScript()
	if err != nil {
		return nil, err
	}
	defer os.Remove(initScript)

	container, err := postgres.Run(ctx,
		cfg.Image,
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		postgres.WithInitScripts(initScript),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}

	return &PGContainer{Container: container, ConnString: connStr}, nil
}

// NewPGContainerWithCleanup starts a container with default settings and
// terminates it when the test ends.
func NewPGContainerWithCleanup(ctx context.Context, tb testing.TB) *PGContainer {
	tb.Helper()

	c, err := NewPGContainer(ctx, PGConfig{})
	if err != nil {
		tb.Fatalf("create postgres container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c.Container); err != nil {
			tb.Logf("terminate postgres container: %v", err)
		}
	})
	return c
}

// Pool opens a pgx pool against the container, closed on test cleanup.
func (c *PGContainer) Pool(ctx context.Context, tb testing.TB) *pg.ConnectionPool {
	tb.Helper()

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{
		ConnStr:         c.ConnString,
		MaxConns:        4,
		ApplicationName: "search-eval-test",
	})
	if err != nil {
		tb.Fatalf("connect to postgres container: %v", err)
	}
	tb.Cleanup(pool.Close)
	return pool
}

// Truncate empties the given tables between test cases.
func Truncate(ctx context.Context, tb testing.TB, pool *pg.ConnectionPool, tables ...string) {
	tb.Helper()

	if len(tables) == 0 {
		return
	}
	if _, err := pool.GetConn().Exec(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE"); err != nil {
		tb.Fatalf("truncate %v: %v", tables, err)
	}
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "db", "migrations")
}

// writeInitScript joins every *.up.sql migration, in file name order, into a temp file.
func writeInitScript() (string, error) {
	dir := migrationsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read migrations dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no migrations found in %s", dir)
	}
	sort.Strings(names)

	var script strings.Builder
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("read migration %s: %w", name, err)
		}
		fmt.Fprintf(&script, "-- %s\n%s;\n\n", name, content)
	}

	f, err := os.CreateTemp("", "search-eval-init-*.sql")
	if err != nil {
		return "", fmt.Errorf("create init script: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(script.String()); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write init script: %w", err)
	}
	return f.Name(), nil
}
