package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/config"
)

// RedisSummaryCache implements SummaryCache using Redis
// This is suitable for distributed deployments where multiple instances
// serve summary reads for the same inventory
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSummaryCache creates a new Redis-backed summary cache
func NewRedisSummaryCache(cfg *config.RedisConfig, ttl time.Duration) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSummaryCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// NewRedisSummaryCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisSummaryCacheWithClient(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached summary, or ErrCacheMiss
func (c *RedisSummaryCache) Get(ctx context.Context, tenantID, inventoryID uuid.UUID) (*scanning.ScanSummary, error) {
	payload, err := c.client.Get(ctx, summaryKey(tenantID, inventoryID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cached summary: %w", err)
	}

	var summary scanning.ScanSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode cached summary: %w", err)
	}

	return &summary, nil
}

// Set stores a summary until the TTL elapses
func (c *RedisSummaryCache) Set(ctx context.Context, tenantID, inventoryID uuid.UUID, summary *scanning.ScanSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey(tenantID, inventoryID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}

	return nil
}

// Invalidate drops the cached summary
func (c *RedisSummaryCache) Invalidate(ctx context.Context, tenantID, inventoryID uuid.UUID) error {
	if err := c.client.Del(ctx, summaryKey(tenantID, inventoryID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached summary: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

// Ensure RedisSummaryCache implements SummaryCache
var _ SummaryCache = (*RedisSummaryCache)(nil)
