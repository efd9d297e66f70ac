// Package cache keeps recent sentiment reports in Redis so repeated sector lookups skip
// the news, social and classifier round trips.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"finwise-backend/config"
	"finwise-backend/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sentiment:"

// NewRedisClient creates a Redis client from config
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// SentimentCache stores sentiment reports per sector with a TTL
type SentimentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSentimentCache(client *redis.Client, ttl time.Duration) *SentimentCache {
	return &SentimentCache{client: client, ttl: ttl}
}

// Sector casing is kept because the mock social feed echoes it into post text
func key(sector string) string {
	return keyPrefix + strings.TrimSpace(sector)
}

// Get returns the cached report for sector; found is false on a cache miss
func (c *SentimentCache) Get(ctx context.Context, sector string) (report *models.SentimentReport, found bool, err error) {
	raw, err := c.client.Get(ctx, key(sector)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	report = &models.SentimentReport{}
	if err := json.Unmarshal(raw, report); err != nil {
		return nil, false, fmt.Errorf("decode cached report: %w", err)
	}
	report.Sector = sector
	return report, true, nil
}

// Set stores the report under its sector
func (c *SentimentCache) Set(ctx context.Context, report *models.SentimentReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, key(report.Sector), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping tests the Redis connection
func (c *SentimentCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *SentimentCache) Close() error {
	return c.client.Close()
}
