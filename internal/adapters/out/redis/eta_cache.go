// Package redis caches drive-time estimates. Routing lookups are the slowest
// and most rate-limited call the suggestion query makes, and couriers do not
// move far between refreshes, so estimates are cached by rounded
// origin/destination pair with a short TTL.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// DefaultETATTL is how long a cached estimate stays fresh.
const DefaultETATTL = 2 * time.Minute

// ETACache decorates an ETAProvider with a Redis lookaside cache.
// Cache failures fall through to the inner provider; a broken Redis never
// breaks suggestions.
type ETACache struct {
	client *redis.Client
	inner  ports.ETAProvider
	ttl    time.Duration
	logger *slog.Logger
}

// NewETACache wraps the given provider.
func NewETACache(client *redis.Client, inner ports.ETAProvider, logger *slog.Logger) *ETACache {
	return &ETACache{
		client: client,
		inner:  inner,
		ttl:    DefaultETATTL,
		logger: logger,
	}
}

// NewETACacheWithTTL wraps the given provider with a custom TTL.
func NewETACacheWithTTL(
	client *redis.Client, inner ports.ETAProvider, ttl time.Duration, logger *slog.Logger,
) *ETACache {
	return &ETACache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		logger: logger,
	}
}

// EstimateDrive returns the cached estimate for the pair when present,
// otherwise asks the inner provider and stores the answer.
func (c *ETACache) EstimateDrive(ctx context.Context, from, to kernel.GeoPoint) (time.Duration, error) {
	key := etaKey(from, to)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if eta, parseErr := time.ParseDuration(cached); parseErr == nil {
			return eta, nil
		}
		// Unparseable entry: treat as a miss and overwrite below.
	} else if err != redis.Nil {
		c.logger.WarnContext(ctx, "eta cache read failed",
			slog.String("key", key),
			slog.Any("error", err))
	}

	eta, err := c.inner.EstimateDrive(ctx, from, to)
	if err != nil {
		return 0, err
	}

	if setErr := c.client.Set(ctx, key, eta.String(), c.ttl).Err(); setErr != nil {
		c.logger.WarnContext(ctx, "eta cache write failed",
			slog.String("key", key),
			slog.Any("error", setErr))
	}

	return eta, nil
}

// etaKey buckets coordinates to ~100 m so nearby origins share an entry.
func etaKey(from, to kernel.GeoPoint) string {
	return fmt.Sprintf("eta:%.3f,%.3f:%.3f,%.3f", from.Lat(), from.Lng(), to.Lat(), to.Lng())
}
