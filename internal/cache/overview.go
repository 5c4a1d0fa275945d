// Package cache keeps collection overviews out of the database on hot paths.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/tcgpocket/internal/model"
)

// Overviews caches collection overviews by collection ID. Get only hits when
// the cached overview was built at the given collection revision. Failures
// are logged and reported as misses.
type Overviews interface {
	Get(ctx context.Context, collectionID string, revision int64) (*model.Overview, bool)
	Set(ctx context.Context, overview *model.Overview)
	Invalidate(ctx context.Context, collectionID string)
}

// DefaultTTL bounds how long an unused overview stays in redis.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "tcg:overview:"

// RedisOverviews stores overviews as JSON in redis.
type RedisOverviews struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedisOverviews creates a redis-backed overview cache.
func NewRedisOverviews(client RedisClient, ttl time.Duration) *RedisOverviews {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisOverviews{client: client, ttl: ttl}
}

func (c *RedisOverviews) Get(ctx context.Context, collectionID string, revision int64) (*model.Overview, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+collectionID)
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("reading cached overview", "collection_id", collectionID, "error", err)
		return nil, false
	}

	var ov model.Overview
	if err := json.Unmarshal([]byte(raw), &ov); err != nil {
		slog.Warn("decoding cached overview", "collection_id", collectionID, "error", err)
		return nil, false
	}
	if ov.Collection.Revision != revision {
		return nil, false
	}
	return &ov, true
}

func (c *RedisOverviews) Set(ctx context.Context, overview *model.Overview) {
	data, err := json.Marshal(overview)
	if err != nil {
		slog.Warn("encoding overview", "collection_id", overview.Collection.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+overview.Collection.ID, string(data), c.ttl); err != nil {
		slog.Warn("caching overview", "collection_id", overview.Collection.ID, "error", err)
	}
}

func (c *RedisOverviews) Invalidate(ctx context.Context, collectionID string) {
	if err := c.client.Del(ctx, keyPrefix+collectionID); err != nil {
		slog.Warn("invalidating overview", "collection_id", collectionID, "error", err)
	}
}

// Nop never caches.
type Nop struct{}

func (Nop) Get(context.Context, string, int64) (*model.Overview, bool) { return nil, false }
func (Nop) Set(context.Context, *model.Overview)                       {}
func (Nop) Invalidate(context.Context, string)                         {}
