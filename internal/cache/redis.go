package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/config"
)

const keyPrefix = "laundry:clean:"

// ResultCache keeps cleaning results in Redis keyed by a hash of the request
type ResultCache struct {
	client *redis.Client
	config config.CacheConfig
	logger *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewResultCache connects to Redis and verifies the connection
func NewResultCache(cfg config.CacheConfig, logger *zap.Logger) (*ResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	cache := &ResultCache{
		client: client,
		config: cfg,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Result cache initialized successfully",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.Duration("ttl", cfg.TTL))

	return cache, nil
}

// Cacheable reports whether a table of n rows is small enough to cache
func (rc *ResultCache) Cacheable(n int) bool {
	return rc != nil && n > 0 && (rc.config.MaxRows <= 0 || n <= rc.config.MaxRows)
}

// Get looks up a cached result. Lookup failures count as misses.
func (rc *ResultCache) Get(ctx context.Context, key string) (*CachedResult, bool) {
	data, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		rc.misses.Add(1)
		rc.logger.Debug("Cache miss", zap.String("key", key))
		return nil, false
	} else if err != nil {
		rc.misses.Add(1)
		rc.logger.Error("Cache lookup failed", zap.Error(err))
		return nil, false
	}

	var result CachedResult
	if err := json.Unmarshal(data, &result); err != nil {
		rc.misses.Add(1)
		rc.logger.Error("Failed to unmarshal cached result", zap.Error(err))
		// Delete corrupted cache entry
		rc.client.Del(ctx, key)
		return nil, false
	}

	rc.hits.Add(1)
	rc.logger.Debug("Cache hit", zap.String("key", key), zap.Int("rows", len(result.Rows)))
	return &result, true
}

// Set stores a result under key with the configured TTL
func (rc *ResultCache) Set(ctx context.Context, key string, result *CachedResult) error {
	result.CachedAt = time.Now()
	result.TTL = int64(rc.config.TTL.Seconds())

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for caching: %w", err)
	}

	if err := rc.client.Set(ctx, key, data, rc.config.TTL).Err(); err != nil {
		rc.logger.Error("Failed to cache result", zap.Error(err))
		return fmt.Errorf("failed to cache result: %w", err)
	}

	rc.logger.Debug("Result cached", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// GetStats returns cache performance statistics
func (rc *ResultCache) GetStats(ctx context.Context) (*CacheStats, error) {
	info, err := rc.client.Info(ctx, "memory").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis info: %w", err)
	}

	stats := &CacheStats{
		Hits:        rc.hits.Load(),
		Misses:      rc.misses.Load(),
		MemoryUsage: usedMemory(info),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	if keys, err := rc.client.DBSize(ctx).Result(); err == nil {
		stats.TotalKeys = keys
	}
	return stats, nil
}

// Clear removes all cached results
func (rc *ResultCache) Clear(ctx context.Context) error {
	iter := rc.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	// Delete keys in batches
	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := min(i+batchSize, len(keys))
		if err := rc.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			rc.logger.Error("Failed to delete cache keys", zap.Error(err))
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	rc.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return nil
}

// Close closes the Redis connection
func (rc *ResultCache) Close() error {
	if rc.client != nil {
		return rc.client.Close()
	}
	return nil
}

// Key hashes the request together with the table it applies to
func Key(req cleaning.Request, columns []string, rows []cleaning.Row, limits analysis.Limits) (string, error) {
	data, err := json.Marshal(keyInput{Request: req, Columns: columns, Rows: rows, Limits: limits})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}

// usedMemory reads used_memory from an INFO reply
func usedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\r\n") {
		if memStr, ok := strings.CutPrefix(line, "used_memory:"); ok {
			if mem, err := strconv.ParseInt(memStr, 10, 64); err == nil {
				return mem
			}
		}
	}
	return 0
}
