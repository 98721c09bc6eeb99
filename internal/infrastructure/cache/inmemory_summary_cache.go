package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
)

// cachedSummary pairs a summary with its expiry time
type cachedSummary struct {
	summary   scanning.ScanSummary
	expiresAt time.Time
}

// InMemorySummaryCache implements SummaryCache in process memory
// Suitable for single-instance deployments and tests
type InMemorySummaryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedSummary
	ttl     time.Duration
}

// NewInMemorySummaryCache creates a new in-memory summary cache
func NewInMemorySummaryCache(ttl time.Duration) *InMemorySummaryCache {
	return &InMemorySummaryCache{
		entries: make(map[string]cachedSummary),
		ttl:     ttl,
	}
}

// Get returns the cached summary, or ErrCacheMiss
func (c *InMemorySummaryCache) Get(ctx context.Context, tenantID, inventoryID uuid.UUID) (*scanning.ScanSummary, error) {
	key := summaryKey(tenantID, inventoryID)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		if ok {
			// Lazily drop expired entries
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return nil, ErrCacheMiss
	}

	summary := entry.summary
	return &summary, nil
}

// Set stores a summary until the TTL elapses
func (c *InMemorySummaryCache) Set(ctx context.Context, tenantID, inventoryID uuid.UUID, summary *scanning.ScanSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[summaryKey(tenantID, inventoryID)] = cachedSummary{
		summary:   *summary,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the cached summary
func (c *InMemorySummaryCache) Invalidate(ctx context.Context, tenantID, inventoryID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, summaryKey(tenantID, inventoryID))
	return nil
}

// Close is a no-op for the in-memory cache
func (c *InMemorySummaryCache) Close() error {
	return nil
}

// Ensure InMemorySummaryCache implements SummaryCache
var _ SummaryCache = (*InMemorySummaryCache)(nil)
