package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"clinic-booking/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis keys for the availability cache
	RedisAvailabilityGenerationKey = "availability:generation"
	RedisAvailabilityCountsPrefix  = "availability:counts:"

	// Timeout for individual Redis operations
	redisCacheTimeout = 500 * time.Millisecond
)

// AvailabilityCache caches the per-day booked counts behind the available
// dates listing.
//
// Entries are stored under a generation number. Readers take the generation
// before loading from the database and store their result under it; writers
// bump the generation after commit. An entry computed before a write is
// therefore never served after that write. When a bump fails, lookups bypass
// the cache until a later bump succeeds.
type AvailabilityCache interface {
	// Lookup returns cached counts for [from, to] and the generation they
	// belong to. ok is false on a miss or when Redis is unavailable.
	Lookup(ctx context.Context, from, to string) (counts map[string]int64, generation int64, ok bool)
	// Store saves counts loaded while generation was current.
	Store(ctx context.Context, generation int64, from, to string, counts map[string]int64)
	// Invalidate makes every existing entry unreachable.
	Invalidate(ctx context.Context)
}

type redisAvailabilityCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	metrics     *metrics.Metrics
	ttl         time.Duration

	// stale is set when a write could not bump the generation.
	staleMu sync.Mutex
	stale   bool
}

func NewRedisAvailabilityCache(redisClient *redis.Client, log *logrus.Logger, m *metrics.Metrics, ttl time.Duration) AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisAvailabilityCache{
		redisClient: redisClient,
		log:         log,
		metrics:     m,
		ttl:         ttl,
	}
}

func countsKey(generation int64, from, to string) string {
	return fmt.Sprintf("%sg%d:%s:%s", RedisAvailabilityCountsPrefix, generation, from, to)
}

func (c *redisAvailabilityCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.redisClient.Get(ctx, RedisAvailabilityGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisAvailabilityCache) Lookup(ctx context.Context, from, to string) (map[string]int64, int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if !c.readable(ctx) {
		c.metrics.CacheLookup(false)
		return nil, -1, false
	}

	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warnf("Failed to read availability cache generation: %+v", err)
		c.metrics.CacheLookup(false)
		return nil, -1, false
	}

	raw, err := c.redisClient.Get(ctx, countsKey(gen, from, to)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Failed to read availability cache: %+v", err)
		}
		c.metrics.CacheLookup(false)
		return nil, gen, false
	}

	var counts map[string]int64
	if err := json.Unmarshal(raw, &counts); err != nil {
		c.log.Warnf("Discarding corrupt availability cache entry: %+v", err)
		c.metrics.CacheLookup(false)
		return nil, gen, false
	}

	c.metrics.CacheLookup(true)
	return counts, gen, true
}

func (c *redisAvailabilityCache) Store(ctx context.Context, generation int64, from, to string, counts map[string]int64) {
	if generation < 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := json.Marshal(counts)
	if err != nil {
		c.log.Warnf("Failed to encode availability counts: %+v", err)
		return
	}
	if err := c.redisClient.Set(ctx, countsKey(generation, from, to), raw, c.ttl).Err(); err != nil {
		c.log.Warnf("Failed to store availability cache: %+v", err)
		return
	}
	c.log.Debugf("Cached availability counts g%d %s..%s (%d days)", generation, from, to, len(counts))
}

func (c *redisAvailabilityCache) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisCacheTimeout)
	defer cancel()

	gen, err := c.redisClient.Incr(ctx, RedisAvailabilityGenerationKey).Result()
	if err != nil {
		c.log.Warnf("Failed to invalidate availability cache, bypassing it until the generation can be bumped: %+v", err)
		c.staleMu.Lock()
		c.stale = true
		c.staleMu.Unlock()
		return
	}
	c.log.Debugf("Availability cache generation is now %d", gen)
}

// readable reports whether the cache may be read. After a failed invalidation
// it retries the bump and keeps refusing until one succeeds.
func (c *redisAvailabilityCache) readable(ctx context.Context) bool {
	c.staleMu.Lock()
	defer c.staleMu.Unlock()

	if !c.stale {
		return true
	}
	gen, err := c.redisClient.Incr(ctx, RedisAvailabilityGenerationKey).Result()
	if err != nil {
		c.log.Debugf("Availability cache still bypassed: %+v", err)
		return false
	}
	c.stale = false
	c.log.Infof("Availability cache recovered at generation %d", gen)
	return true
}

type noopAvailabilityCache struct{}

// NewNoopAvailabilityCache returns a cache that never hits, used when Redis
// is disabled.
func NewNoopAvailabilityCache() AvailabilityCache {
	return noopAvailabilityCache{}
}

func (noopAvailabilityCache) Lookup(context.Context, string, string) (map[string]int64, int64, bool) {
	return nil, -1, false
}

func (noopAvailabilityCache) Store(context.Context, int64, string, string, map[string]int64) {}

func (noopAvailabilityCache) Invalidate(context.Context) {}
