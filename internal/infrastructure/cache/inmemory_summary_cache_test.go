package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
)

func TestInMemorySummaryCache(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	inventoryID := uuid.New()

	t.Run("miss on empty cache", func(t *testing.T) {
		c := NewInMemorySummaryCache(time.Minute)

		_, err := c.Get(ctx, tenantID, inventoryID)

		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("set then get returns a copy", func(t *testing.T) {
		c := NewInMemorySummaryCache(time.Minute)
		summary := &scanning.ScanSummary{TotalItems: 5, BarcodeScans: 3}

		require.NoError(t, c.Set(ctx, tenantID, inventoryID, summary))

		got, err := c.Get(ctx, tenantID, inventoryID)
		require.NoError(t, err)
		assert.Equal(t, *summary, *got)
		assert.NotSame(t, summary, got)
	})

	t.Run("expired entries miss", func(t *testing.T) {
		c := NewInMemorySummaryCache(-time.Second)
		require.NoError(t, c.Set(ctx, tenantID, inventoryID, &scanning.ScanSummary{}))

		_, err := c.Get(ctx, tenantID, inventoryID)

		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("invalidate drops the entry", func(t *testing.T) {
		c := NewInMemorySummaryCache(time.Minute)
		require.NoError(t, c.Set(ctx, tenantID, inventoryID, &scanning.ScanSummary{TotalItems: 1}))

		require.NoError(t, c.Invalidate(ctx, tenantID, inventoryID))

		_, err := c.Get(ctx, tenantID, inventoryID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("entries are tenant scoped", func(t *testing.T) {
		c := NewInMemorySummaryCache(time.Minute)
		require.NoError(t, c.Set(ctx, tenantID, inventoryID, &scanning.ScanSummary{TotalItems: 1}))

		_, err := c.Get(ctx, uuid.New(), inventoryID)

		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
