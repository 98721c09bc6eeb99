package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
)

// ErrCacheMiss is returned when no cached summary exists for an inventory
var ErrCacheMiss = errors.New("summary cache miss")

// SummaryCache stores server-fetched scan summaries for a short TTL so rapid
// summary polling does not hammer the inventory service
type SummaryCache interface {
	// Get returns the cached summary, or ErrCacheMiss
	Get(ctx context.Context, tenantID, inventoryID uuid.UUID) (*scanning.ScanSummary, error)
	// Set stores a summary until the configured TTL elapses
	Set(ctx context.Context, tenantID, inventoryID uuid.UUID, summary *scanning.ScanSummary) error
	// Invalidate drops the cached summary, if any
	Invalidate(ctx context.Context, tenantID, inventoryID uuid.UUID) error
	// Close releases any underlying resources
	Close() error
}

// summaryKey builds the cache key for one inventory's summary
func summaryKey(tenantID, inventoryID uuid.UUID) string {
	return "scan:summary:" + tenantID.String() + ":" + inventoryID.String()
}
