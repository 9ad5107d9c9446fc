package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"paygap/metrics"
)

const (
	announcementKeyPrefix  = "announcements:search:"
	announcementVersionKey = "announcements:version"
)

// AnnouncementCache caches public announcement search results in Redis.
// A nil cache is valid and behaves as a permanent miss, so callers do not
// branch on whether caching is enabled.
type AnnouncementCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewAnnouncementCache creates a Redis-backed announcement cache
func NewAnnouncementCache(addr, password string, db, poolSize int, ttl time.Duration, logger *zap.SugaredLogger) *AnnouncementCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})

	return &AnnouncementCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Ping tests the Redis connection
func (ac *AnnouncementCache) Ping(ctx context.Context) error {
	if ac == nil {
		return nil
	}
	return ac.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (ac *AnnouncementCache) Close() error {
	if ac == nil {
		return nil
	}
	return ac.client.Close()
}

// SearchKey derives a stable cache key from the search parameters. Keys
// embed the current namespace version so invalidation is a single INCR
// rather than a scan over every cached page.
func (ac *AnnouncementCache) SearchKey(ctx context.Context, offset int, limit *int, filterJSON, sortJSON string) (string, error) {
	if ac == nil {
		return "", nil
	}
	version, err := ac.client.Get(ctx, announcementVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}

	lim := -1
	if limit != nil {
		lim = *limit
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%s|%s", offset, lim, filterJSON, sortJSON)))
	return fmt.Sprintf("%s%d:%s", announcementKeyPrefix, version, hex.EncodeToString(sum[:16])), nil
}

// Get retrieves a cached search result into dest, reporting whether the
// key was present
func (ac *AnnouncementCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if ac == nil {
		return false, nil
	}
	data, err := ac.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			metrics.CacheMisses.WithLabelValues("announcements").Inc()
			return false, nil
		}
		ac.logger.Errorf("Failed to get cache value for key %s: %v", key, err)
		metrics.CacheErrors.WithLabelValues("announcements", "get").Inc()
		return false, err
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		ac.logger.Errorf("Failed to unmarshal cache value for key %s: %v", key, err)
		metrics.CacheErrors.WithLabelValues("announcements", "unmarshal").Inc()
		return false, err
	}

	metrics.CacheHits.WithLabelValues("announcements").Inc()
	return true, nil
}

// Set stores a search result under key with the configured TTL
func (ac *AnnouncementCache) Set(ctx context.Context, key string, value interface{}) error {
	if ac == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		ac.logger.Errorf("Failed to marshal cache value for key %s: %v", key, err)
		metrics.CacheErrors.WithLabelValues("announcements", "marshal").Inc()
		return err
	}

	if err := ac.client.Set(ctx, key, data, ac.ttl).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("announcements", "set").Inc()
		return err
	}
	return nil
}

// Invalidate bumps the namespace version, orphaning every cached search
// result. Orphaned keys age out through their TTL.
func (ac *AnnouncementCache) Invalidate(ctx context.Context) error {
	if ac == nil {
		return nil
	}
	if err := ac.client.Incr(ctx, announcementVersionKey).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("announcements", "invalidate").Inc()
		return err
	}
	return nil
}
