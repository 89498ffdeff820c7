package glance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/apfk88/heartglance/internal/metrics"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// capabilityCache memoizes the gateway's authorization answer for a short
// TTL. Every reading triggers a capability check, so without the cache the
// gateway would see one round trip per heartbeat.
type capabilityCache struct {
	ttl   time.Duration
	clock clockwork.Clock
	fetch func(ctx context.Context) (bool, error)
	group singleflight.Group

	mu        sync.RWMutex
	value     bool
	expiresAt time.Time
}

func newCapabilityCache(ttl time.Duration, clock clockwork.Clock, fetch func(ctx context.Context) (bool, error)) *capabilityCache {
	return &capabilityCache{ttl: ttl, clock: clock, fetch: fetch}
}

func (c *capabilityCache) authorized(ctx context.Context) bool {
	c.mu.RLock()
	value, expiresAt := c.value, c.expiresAt
	c.mu.RUnlock()

	if !expiresAt.IsZero() && c.clock.Now().Before(expiresAt) {
		metrics.CapabilityCacheHitsTotal.Inc()
		return value
	}

	metrics.CapabilityCacheMissesTotal.Inc()

	// Collapse concurrent refreshes into one gateway round trip.
	result, err, _ := c.group.Do("capability", func() (any, error) {
		authorized, err := c.fetch(ctx)
		if err != nil {
			return false, err
		}
		c.mu.Lock()
		c.value = authorized
		c.expiresAt = c.clock.Now().Add(c.ttl)
		c.mu.Unlock()
		return authorized, nil
	})
	if err != nil {
		// Unreachable gateway reads as "not authorized"; the next check
		// retries because nothing was cached.
		slog.Warn("Capability check failed", "error", err)
		return false
	}
	return result.(bool)
}
