package pg

import (
	"context"
	"time"
)

const defaultHealthTimeout = 2 * time.Second

// HealthChecker reports whether the pool can reach the database.
type HealthChecker struct {
	pool    *ConnectionPool
	timeout time.Duration
}

func NewHealthChecker(pool *ConnectionPool, timeout ...time.Duration) *HealthChecker {
	hc := &HealthChecker{pool: pool, timeout: defaultHealthTimeout}
	if len(timeout) > 0 && timeout[0] > 0 {
		hc.timeout = timeout[0]
	}
	return hc
}

func (hc *HealthChecker) Name() string { return "postgres" }

func (hc *HealthChecker) Healthy(ctx context.Context) bool {
	if hc.pool == nil || hc.pool.conn == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()
	return hc.pool.Ping(ctx) == nil
}
