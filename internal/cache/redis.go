package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ReviewCache stores serialized review results keyed by text hash and
// vocabulary version, so a vocabulary swap naturally invalidates every
// cached entry from the previous snapshot.
type ReviewCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewReviewCache creates a Redis-backed review-result cache
func NewReviewCache(config *Config, logger *zap.Logger) (*ReviewCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.MaxConnections
	opts.MinIdleConns = config.MinIdleConns

	c := &ReviewCache{
		client: redis.NewClient(opts),
		config: config,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Review cache initialized",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Duration("default_ttl", config.DefaultTTL))

	return c, nil
}

// Key derives the cache key for one review call. Only a truncated hash of
// the text is used; the text itself never reaches Redis as a key.
func (c *ReviewCache) Key(text string, vocabVersion int64, options string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:rev:%s:v%d:%s",
		c.config.KeyPrefix, hex.EncodeToString(sum[:])[:16], vocabVersion, options)
}

// Get returns the cached serialized result, if present
func (c *ReviewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.misses.Add(1)
		return nil, false
	}
	if err != nil {
		c.logger.Error("Cache lookup failed", zap.Error(err))
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	c.logger.Debug("Cache hit", zap.String("key", key))
	return data, true
}

// Set stores a serialized result with the configured TTL. Failures are
// logged and swallowed; the cache is an optimization, never a dependency.
func (c *ReviewCache) Set(ctx context.Context, key string, data []byte) {
	if err := c.client.Set(ctx, key, data, c.config.DefaultTTL).Err(); err != nil {
		c.logger.Error("Failed to cache review result", zap.Error(err))
	}
}

// GetStats returns cache performance statistics
func (c *ReviewCache) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	keys, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis key count: %w", err)
	}
	stats.TotalKeys = keys
	return stats, nil
}

// Clear removes all cached review results under the configured prefix
func (c *ReviewCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.config.KeyPrefix+":rev:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := c.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	c.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return nil
}

// Close closes the Redis connection
func (c *ReviewCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// maskRedisURL masks credentials in a Redis URL for logging
func maskRedisURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.SplitN(url, "@", 2)
	if idx := strings.LastIndex(parts[0], ":"); idx > strings.Index(parts[0], "//") {
		parts[0] = parts[0][:idx+1] + "***"
	}
	return strings.Join(parts, "@")
}
