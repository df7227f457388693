// Package tokencache provides an optional Redis-backed cache for the order
// backend's access token, so a horizontally scaled deployment does not
// stampede the token endpoint on cold start. It is never load-bearing for
// correctness — a cache miss just costs one extra token request.
package tokencache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client. A nil *Cache is valid and treated as
// "disabled" by callers (orderbackend.Client checks for nil before use).
type Cache struct {
	rdb *redis.Client
}

// New connects to redisURL; returns nil if redisURL is empty, letting
// callers fall back to in-process-only caching.
func New(redisURL string) (*Cache, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Cache{rdb: redis.NewClient(opts)}, nil
}

const keyPrefix = "voicebridge:token:"

// Get returns the cached token and its absolute expiry for clientID.
func (c *Cache) Get(ctx context.Context, clientID string) (token string, expiresAt time.Time, ok bool) {
	if c == nil {
		return "", time.Time{}, false
	}
	vals, err := c.rdb.HMGet(ctx, keyPrefix+clientID, "token", "expires_at").Result()
	if err != nil || len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return "", time.Time{}, false
	}
	tok, _ := vals[0].(string)
	expStr, _ := vals[1].(string)
	unix, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return tok, time.Unix(unix, 0), true
}

// Set stores token and its absolute expiry for clientID.
func (c *Cache) Set(ctx context.Context, clientID, token string, expiresAt time.Time) {
	if c == nil {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	c.rdb.HSet(ctx, keyPrefix+clientID, "token", token, "expires_at", strconv.FormatInt(expiresAt.Unix(), 10))
	c.rdb.Expire(ctx, keyPrefix+clientID, ttl)
}
