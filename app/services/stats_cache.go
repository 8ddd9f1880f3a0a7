package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsCache is a best-effort Redis cache for the hot point-stats responses.
// The URL registry polls stats for every link it renders, so a short TTL
// absorbs most of that read load. Every operation fails open: a broken or
// absent Redis turns the cache into a no-op, never into an error.
type StatsCache interface {
	Get(ctx context.Context, shortCode string) ([]byte, bool)
	Set(ctx context.Context, shortCode string, payload []byte)
	Invalidate(ctx context.Context, shortCode string)
	Healthy(ctx context.Context) bool
}

type StatsCacheImpl struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStatsCache creates a stats cache backed by the given Redis client.
// A nil client yields a disabled cache.
func NewStatsCache(client *redis.Client, prefix string, ttl time.Duration) StatsCache {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &StatsCacheImpl{client: client, prefix: prefix, ttl: ttl}
}

func (c *StatsCacheImpl) key(shortCode string) string {
	return c.prefix + "stats:" + shortCode
}

func (c *StatsCacheImpl) Get(ctx context.Context, shortCode string) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, c.key(shortCode)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Stats cache read failed for %s: %v", shortCode, err)
		}
		return nil, false
	}
	return payload, true
}

func (c *StatsCacheImpl) Set(ctx context.Context, shortCode string, payload []byte) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, c.key(shortCode), payload, c.ttl).Err(); err != nil {
		log.Printf("Stats cache write failed for %s: %v", shortCode, err)
	}
}

func (c *StatsCacheImpl) Invalidate(ctx context.Context, shortCode string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(shortCode)).Err(); err != nil {
		log.Printf("Stats cache invalidation failed for %s: %v", shortCode, err)
	}
}

func (c *StatsCacheImpl) Healthy(ctx context.Context) bool {
	if c.client == nil {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}
