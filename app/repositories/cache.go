package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firsttime/app/models"

	"github.com/redis/go-redis/v9"
)

const (
	postsCacheKey = "firsttime:posts"

	// PostsCacheTTL bounds how long a cached read-all may be served.
	PostsCacheTTL = 30 * time.Minute
)

// ConnectRedis parses a redis:// URL or a bare host:port and pings it.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// PostCache caches the remote read-all. A nil *PostCache is a no-op.
type PostCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPostCache(client *redis.Client, ttl time.Duration) *PostCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = PostsCacheTTL
	}
	return &PostCache{client: client, ttl: ttl}
}

// Aside serves the collection from Redis, falling back to fetch on a miss
// and storing the result best-effort.
func (c *PostCache) Aside(ctx context.Context, fetch func() ([]*models.Post, error)) ([]*models.Post, error) {
	if c == nil {
		return fetch()
	}

	raw, err := c.client.Get(ctx, postsCacheKey).Bytes()
	if err == nil {
		var posts []*models.Post
		if err := unmarshalEntity(raw, &posts); err == nil {
			return posts, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		// cache unavailable, read through
		return fetch()
	}

	posts, err := fetch()
	if err != nil {
		return nil, err
	}
	if data, err := marshalEntity(posts); err == nil {
		_ = c.client.Set(ctx, postsCacheKey, data, c.ttl).Err()
	}
	return posts, nil
}

// Invalidate drops the cached collection.
func (c *PostCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, postsCacheKey).Err()
}
