package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/infrastructure/config"
)

// RecommendationCacheFactory creates recommendation caches based on configuration
type RecommendationCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*RecommendationCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *RecommendationCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *RecommendationCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRecommendationCacheFactory creates a new factory
func NewRecommendationCacheFactory(cfg config.RedisConfig, opts ...FactoryOption) *RecommendationCacheFactory {
	f := &RecommendationCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed cache
func (f *RecommendationCacheFactory) CreateRedisCache() (RecommendationCache, error) {
	c, err := NewRedisRecommendationCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis recommendation cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates a process-local cache
func (f *RecommendationCacheFactory) CreateInMemoryCache() RecommendationCache {
	return NewInMemoryRecommendationCache()
}

// Create returns a Redis cache when useRedis is set and reachable, otherwise
// the in-memory cache if fallback is allowed
func (f *RecommendationCacheFactory) Create(useRedis bool) (RecommendationCache, error) {
	if !useRedis {
		f.logger.Info("using in-memory recommendation cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis recommendation cache")
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for recommendation cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory recommendation cache. "+
		"Sync invalidation will not reach other instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
