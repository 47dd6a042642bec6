package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/tennis-sim/internal/models"
	"github.com/stitts-dev/tennis-sim/internal/pipeline"
)

// ErrCacheMiss is returned when a key is absent or caching is disabled
var ErrCacheMiss = errors.New("cache miss")

// ResultCache stores simulation and pipeline results in Redis.
// A nil client turns every call into a miss or a no-op.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

func NewResultCache(client *redis.Client, ttl time.Duration, logger *logrus.Entry) *ResultCache {
	return &ResultCache{client: client, ttl: ttl, logger: logger}
}

// NewClient parses a redis:// URL. An empty URL disables caching and returns nil.
func NewClient(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return redis.NewClient(opt), nil
}

// Enabled reports whether a Redis client is configured
func (c *ResultCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Ping checks the Redis connection; a disabled cache is always healthy
func (c *ResultCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Key digests the inputs of a run into a stable cache key
func Key(inputs ...any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, in := range inputs {
		if err := enc.Encode(in); err != nil {
			return "", fmt.Errorf("failed to digest cache key: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *ResultCache) set(ctx context.Context, fullKey string, v any) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cached value: %w", err)
	}
	if err := c.client.Set(ctx, fullKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", fullKey, err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  fullKey,
		"expiration": c.ttl,
		"bytes":      len(data),
	}).Debug("Cached result")
	return nil
}

func (c *ResultCache) get(ctx context.Context, fullKey string, dst any) error {
	if !c.Enabled() {
		return ErrCacheMiss
	}
	data, err := c.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get %s from cache: %w", fullKey, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	c.logger.WithField("cache_key", fullKey).Debug("Retrieved result from cache")
	return nil
}

// SetPipelineResult stores a full pipeline run
func (c *ResultCache) SetPipelineResult(ctx context.Context, key string, result *pipeline.Result) error {
	return c.set(ctx, fmt.Sprintf("pipeline:%s", key), result)
}

// GetPipelineResult retrieves a full pipeline run
func (c *ResultCache) GetPipelineResult(ctx context.Context, key string) (*pipeline.Result, error) {
	var result pipeline.Result
	if err := c.get(ctx, fmt.Sprintf("pipeline:%s", key), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetSlateResult stores a slate simulation
func (c *ResultCache) SetSlateResult(ctx context.Context, key string, result *models.SlateResult) error {
	return c.set(ctx, fmt.Sprintf("simulation:%s", key), result)
}

// GetSlateResult retrieves a slate simulation
func (c *ResultCache) GetSlateResult(ctx context.Context, key string) (*models.SlateResult, error) {
	var result models.SlateResult
	if err := c.get(ctx, fmt.Sprintf("simulation:%s", key), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Close releases the Redis connection pool
func (c *ResultCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
