package scanning

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
	"github.com/shopadmin/scan-gateway/internal/domain/shared"
)

// SummaryInvalidationHandler drops cached summaries when scans change the
// state behind them, so the next summary read reflects the change
type SummaryInvalidationHandler struct {
	summaryCache SummaryCache
	logger       *zap.Logger
}

// NewSummaryInvalidationHandler creates a new summary invalidation handler
func NewSummaryInvalidationHandler(summaryCache SummaryCache, logger *zap.Logger) *SummaryInvalidationHandler {
	return &SummaryInvalidationHandler{
		summaryCache: summaryCache,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SummaryInvalidationHandler) EventTypes() []string {
	return []string{
		scanning.EventTypeScanRecorded,
		scanning.EventTypeBatchSubmitted,
		scanning.EventTypeSessionClosed,
	}
}

// Handle invalidates the summary cache entry for the affected inventory
func (h *SummaryInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var rawInventoryID string

	switch e := event.(type) {
	case *scanning.ScanRecordedEvent:
		rawInventoryID = e.InventoryID
	case *scanning.BatchSubmittedEvent:
		rawInventoryID = e.InventoryID
	case *scanning.SessionClosedEvent:
		rawInventoryID = e.InventoryID
	default:
		return nil
	}

	inventoryID, err := uuid.Parse(rawInventoryID)
	if err != nil {
		h.logger.Warn("event carried malformed inventory id",
			zap.String("event_type", event.EventType()),
			zap.String("inventory_id", rawInventoryID),
		)
		return nil
	}

	return h.summaryCache.Invalidate(ctx, event.TenantID(), inventoryID)
}

// Ensure SummaryInvalidationHandler implements EventHandler
var _ shared.EventHandler = (*SummaryInvalidationHandler)(nil)
