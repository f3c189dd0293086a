// Package dedup provides best-effort duplicate suppression for inbound
// updates, backed by a shared Redis keyspace.
package dedup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// MarkerTTL is the lifetime of a dedup marker. An update id redelivered
// within this window is treated as a duplicate; after expiry the marker
// self-heals and the id is processed again.
const MarkerTTL = 60 * time.Second

const keyPrefix = "update:"

// Cache suppresses reprocessing of recently seen update ids. It is shared
// across all concurrent ingestion cycles and across process restarts within
// the marker TTL. Suppression is an optimization, not a correctness
// guarantee: any cache failure degrades to "not a duplicate" so that
// ingestion is never blocked on Redis.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewCache creates a dedup cache for the given Redis address. An empty addr
// disables the cache entirely; every update is then treated as new.
func NewCache(addr, password string, db int, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "dedup_cache")

	if addr == "" {
		log.Warn("Redis address not configured, duplicate suppression disabled")
		return &Cache{logger: log}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	log.Info("Dedup cache initialized", "addr", addr, "marker_ttl", MarkerTTL)
	return &Cache{client: client, logger: log}
}

// IsDuplicate atomically claims the marker for updateID and reports whether
// it was already claimed by a concurrent or very recent cycle. The claim is
// a single SET NX with expiry, so there is no check-then-set race.
func (c *Cache) IsDuplicate(ctx context.Context, updateID int64) bool {
	if c.client == nil {
		return false
	}

	key := fmt.Sprintf("%s%d", keyPrefix, updateID)
	created, err := c.client.SetNX(ctx, key, "1", MarkerTTL).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "Dedup check failed, treating update as new",
			"update_id", updateID, "error", err)
		return false
	}

	return !created
}

// Ping verifies connectivity to Redis. It returns nil when the cache is
// disabled.
func (c *Cache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis client.
func (c *Cache) Close() {
	if c.client == nil {
		return
	}
	if err := c.client.Close(); err != nil {
		c.logger.Error("Error closing Redis client", "error", err)
	} else {
		c.logger.Info("Redis client closed successfully.")
	}
}
