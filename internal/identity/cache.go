package identity

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Resolver with a Redis read-through cache. Cache failures
// degrade to direct resolution.
type Cache struct {
	rdb   *redis.Client
	inner Resolver
	ttl   time.Duration
}

// NewCache creates a caching resolver with the given TTL.
func NewCache(rdb *redis.Client, inner Resolver, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, inner: inner, ttl: ttl}
}

func cacheKey(did string) string {
	return "identity:doc:" + did
}

// Resolve returns the cached document for a DID, resolving and caching on
// miss.
func (c *Cache) Resolve(ctx context.Context, did string) (*Document, error) {
	cached, err := c.rdb.Get(ctx, cacheKey(did)).Bytes()
	if err == nil {
		var doc Document
		if json.Unmarshal(cached, &doc) == nil {
			return &doc, nil
		}
	} else if err != redis.Nil {
		slog.Warn("identity cache read failed", "did", did, "error", err)
	}

	doc, err := c.inner.Resolve(ctx, did)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(doc); err == nil {
		if err := c.rdb.Set(ctx, cacheKey(did), data, c.ttl).Err(); err != nil {
			slog.Warn("identity cache write failed", "did", did, "error", err)
		}
	}

	return doc, nil
}
