// internal/cache/response.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	responseKeyPrefix = "graphql:"

	DefaultResponseTTL = 5 * time.Minute
)

// ResponseCache stores rendered GraphQL responses of the public graph.
// Errors are logged and treated as misses.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Key hashes the parts that identify a response: schema, language and body.
func Key(parts ...string) string {
	digest := xxhash.New()
	for _, part := range parts {
		digest.WriteString(part)
		digest.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", digest.Sum64())
}

func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Response cache get failed")
		return nil, false
	}
	return val, true
}

func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, responseKeyPrefix+key, body, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Response cache set failed")
	}
}

// InvalidateAll drops every cached response. Any admin write may change
// what the public graph returns.
func (c *ResponseCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, responseKeyPrefix+"*", 100).Result()
		if err != nil {
			logrus.WithError(err).Warn("Response cache scan failed")
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				logrus.WithError(err).Warn("Response cache delete failed")
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		logrus.WithField("deleted", deleted).Debug("Response cache cleared")
	}
}
