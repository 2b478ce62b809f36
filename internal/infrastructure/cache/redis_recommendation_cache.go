package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisRecommendationCache implements RecommendationCache on Redis so that
// every server instance sees the same invalidation
type RedisRecommendationCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRecommendationCache connects to Redis and verifies the connection
func NewRedisRecommendationCache(cfg RedisConfig) (*RedisRecommendationCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRecommendationCacheWithClient(client, DefaultKeyPrefix), nil
}

// NewRedisRecommendationCacheWithClient creates a cache over an existing client
func NewRedisRecommendationCacheWithClient(client *redis.Client, keyPrefix string) *RedisRecommendationCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisRecommendationCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisRecommendationCache) entryKey(key string) string {
	return c.keyPrefix + "entry:" + key
}

func (c *RedisRecommendationCache) generationKey() string {
	return c.keyPrefix + "generation"
}

// Get returns the value for key if present
func (c *RedisRecommendationCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached recommendations: %w", err)
	}
	return value, true, nil
}

// Generation returns the shared invalidation counter, zero when unset
func (c *RedisRecommendationCache) Generation(ctx context.Context) (uint64, error) {
	generation, err := c.client.Get(ctx, c.generationKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return generation, nil
}

// SetAtGeneration stores value for ttl inside a WATCH on the generation key,
// so an invalidation from any instance between the check and the write
// aborts it
func (c *RedisRecommendationCache) SetAtGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, generation uint64) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}

	stored := false
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, c.generationKey()).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.entryKey(key), value, ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, c.generationKey())

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to cache recommendations: %w", err)
	}
	return stored, nil
}

// InvalidateAll advances the generation, then deletes every entry under
// the cache prefix
func (c *RedisRecommendationCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to advance cache generation: %w", err)
	}

	iter := c.client.Scan(ctx, 0, c.entryKey("*"), scanBatch).Iterator()
	keys := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatch {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to invalidate recommendations: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan recommendation keys: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to invalidate recommendations: %w", err)
		}
	}
	return nil
}

// Close closes the Redis client
func (c *RedisRecommendationCache) Close() error {
	return c.client.Close()
}

var _ RecommendationCache = (*RedisRecommendationCache)(nil)
