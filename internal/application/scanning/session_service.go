package scanning

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
	"github.com/shopadmin/scan-gateway/internal/domain/shared"
)

// SummaryCache stores server-fetched summaries for a short TTL
type SummaryCache interface {
	Get(ctx context.Context, tenantID, inventoryID uuid.UUID) (*scanning.ScanSummary, error)
	Set(ctx context.Context, tenantID, inventoryID uuid.UUID, summary *scanning.ScanSummary) error
	Invalidate(ctx context.Context, tenantID, inventoryID uuid.UUID) error
}

// SessionService provides application services for scan sessions
type SessionService struct {
	store        scanning.SessionStore
	gateway      scanning.RemoteInventoryGateway
	summaryCache SummaryCache
	eventBus     shared.EventBus
	logger       *zap.Logger

	immediate CommitStrategy
	batch     CommitStrategy
}

// NewSessionService creates a new SessionService
func NewSessionService(
	store scanning.SessionStore,
	gateway scanning.RemoteInventoryGateway,
	summaryCache SummaryCache,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		store:        store,
		gateway:      gateway,
		summaryCache: summaryCache,
		eventBus:     eventBus,
		logger:       logger,
		immediate:    &immediateStrategy{gateway: gateway, logger: logger},
		batch:        &batchStrategy{},
	}
}

// ===================== Session Lifecycle =====================

// Open creates a scan session for an inventory count. Opening is idempotent:
// an existing session for the same inventory is returned unchanged.
func (s *SessionService) Open(ctx context.Context, tenantID, inventoryID uuid.UUID, req OpenSessionRequest) (*SessionResponse, error) {
	if existing, err := s.store.Find(tenantID, inventoryID); err == nil {
		response := ToSessionResponse(existing)
		return &response, nil
	}

	mode := scanning.SessionMode(req.Mode)
	if req.Mode == "" {
		mode = scanning.SessionModeSingle
	}

	session, err := scanning.NewScanSession(tenantID, inventoryID, mode)
	if err != nil {
		return nil, err
	}

	s.store.Save(session)
	s.publishEvents(ctx, session)

	response := ToSessionResponse(session)
	return &response, nil
}

// Get retrieves the active session for an inventory count
func (s *SessionService) Get(ctx context.Context, tenantID, inventoryID uuid.UUID) (*SessionResponse, error) {
	session, err := s.store.Find(tenantID, inventoryID)
	if err != nil {
		return nil, err
	}

	response := ToSessionResponse(session)
	return &response, nil
}

// Close discards the session along with any uncommitted batch buffer
func (s *SessionService) Close(ctx context.Context, tenantID, inventoryID uuid.UUID) error {
	session, err := s.store.Delete(tenantID, inventoryID)
	if err != nil {
		return err
	}

	if session.ItemCount() > 0 {
		s.logger.Info("closing session with uncommitted lines",
			zap.String("inventory_id", inventoryID.String()),
			zap.Int("buffered_items", session.ItemCount()),
		)
	}

	session.AddDomainEvent(scanning.NewSessionClosedEvent(session))
	s.publishEvents(ctx, session)

	return nil
}

// ===================== Scan Operations =====================

// RecordScan merges a decoded code into the session, committing it according
// to the session's mode
func (s *SessionService) RecordScan(ctx context.Context, tenantID, inventoryID uuid.UUID, req RecordScanRequest) (*RecordScanResponse, error) {
	method := scanning.ScanMethod(req.Method)
	if req.Method == "" {
		method = scanning.ScanMethodBarcode
	}

	var response *RecordScanResponse
	err := s.store.Update(tenantID, inventoryID, func(session *scanning.ScanSession) error {
		strategy := s.strategyFor(session.Mode)

		resp, err := strategy.Record(ctx, session, req.Code, method)
		if err != nil {
			return err
		}
		response = resp

		s.publishEvents(ctx, session)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// AdjustQuantity applies a manual correction to a buffered line
func (s *SessionService) AdjustQuantity(ctx context.Context, tenantID, inventoryID, itemID uuid.UUID, req AdjustQuantityRequest) (*AdjustQuantityResponse, error) {
	var response *AdjustQuantityResponse
	err := s.store.Update(tenantID, inventoryID, func(session *scanning.ScanSession) error {
		item, err := session.AdjustQuantity(itemID, req.Delta)
		if err != nil {
			return err
		}

		if item == nil {
			response = &AdjustQuantityResponse{Pruned: true}
		} else {
			itemResponse := ToLineItemResponse(item)
			response = &AdjustQuantityResponse{Item: &itemResponse}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// RemoveItem drops a buffered line from the session
func (s *SessionService) RemoveItem(ctx context.Context, tenantID, inventoryID, itemID uuid.UUID) error {
	return s.store.Update(tenantID, inventoryID, func(session *scanning.ScanSession) error {
		return session.Remove(itemID)
	})
}

// SetMode switches the session's commit strategy
func (s *SessionService) SetMode(ctx context.Context, tenantID, inventoryID uuid.UUID, req SetModeRequest) (*SessionResponse, error) {
	var response *SessionResponse
	err := s.store.Update(tenantID, inventoryID, func(session *scanning.ScanSession) error {
		if err := session.SetMode(scanning.SessionMode(req.Mode)); err != nil {
			return err
		}
		r := ToSessionResponse(session)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// SetQuantityStep sets the quantity applied to the next scan event
func (s *SessionService) SetQuantityStep(ctx context.Context, tenantID, inventoryID uuid.UUID, req SetQuantityStepRequest) (*SessionResponse, error) {
	var response *SessionResponse
	err := s.store.Update(tenantID, inventoryID, func(session *scanning.ScanSession) error {
		if err := session.SetQuantityStep(req.Step); err != nil {
			return err
		}
		r := ToSessionResponse(session)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// ===================== Batch Submission =====================

// SubmitBatch commits the buffered lines in one bulk request. Any response
// from the inventory service clears the buffer, including responses with
// per-line failures: the server has recorded what it accepted, so resubmitting
// the whole buffer would double-count the accepted lines. Only a transport
// failure keeps the buffer intact for retry.
func (s *SessionService) SubmitBatch(ctx context.Context, tenantID, inventoryID uuid.UUID) (*SubmitBatchResponse, error) {
	var response *SubmitBatchResponse
	err := s.store.Update(tenantID, inventoryID, func(session *scanning.ScanSession) error {
		lines := session.BatchLines()
		if len(lines) == 0 {
			response = &SubmitBatchResponse{Cleared: false}
			return nil
		}

		result, err := s.gateway.CommitScanBulk(ctx, tenantID, inventoryID, lines)
		if err != nil {
			s.logger.Warn("batch submission failed, buffer retained",
				zap.String("inventory_id", inventoryID.String()),
				zap.Int("buffered_items", len(lines)),
				zap.Error(err),
			)
			return err
		}

		session.AddDomainEvent(scanning.NewBatchSubmittedEvent(session, result))
		session.Clear()

		response = &SubmitBatchResponse{
			Submitted:   len(lines),
			Processed:   result.Processed,
			ErrorsCount: result.ErrorsCount,
			Cleared:     true,
		}
		for _, failed := range result.FailedLines() {
			response.Failures = append(response.Failures, BatchFailureResponse{
				Code:    failed.Code,
				Message: failed.Message,
			})
		}

		s.publishEvents(ctx, session)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// ===================== Summary =====================

// GetSummary returns scan statistics for an inventory count. Server numbers
// are preferred because they include scans from other devices; the local
// buffer projection is the fallback when the inventory service is unreachable.
func (s *SessionService) GetSummary(ctx context.Context, tenantID, inventoryID uuid.UUID) (*SummaryResponse, error) {
	if cached, err := s.summaryCache.Get(ctx, tenantID, inventoryID); err == nil {
		return &SummaryResponse{ScanSummary: *cached, Source: SummarySourceServer}, nil
	}

	server, err := s.gateway.FetchSummary(ctx, tenantID, inventoryID)
	if err == nil {
		if cacheErr := s.summaryCache.Set(ctx, tenantID, inventoryID, server); cacheErr != nil {
			s.logger.Warn("failed to cache summary", zap.Error(cacheErr))
		}
		return &SummaryResponse{ScanSummary: *server, Source: SummarySourceServer}, nil
	}

	s.logger.Warn("summary fetch failed, falling back to local projection",
		zap.String("inventory_id", inventoryID.String()),
		zap.Error(err),
	)

	var items []*scanning.ScanLineItem
	if session, findErr := s.store.Find(tenantID, inventoryID); findErr == nil {
		items = session.SortedItems()
	} else if !errors.Is(findErr, shared.ErrNotFound) {
		return nil, findErr
	}

	local := scanning.ProjectSummary(items, nil)
	return &SummaryResponse{ScanSummary: local, Source: SummarySourceLocal}, nil
}

// ===================== Helpers =====================

// strategyFor returns the commit strategy for a session mode
func (s *SessionService) strategyFor(mode scanning.SessionMode) CommitStrategy {
	if mode == scanning.SessionModeSingle {
		return s.immediate
	}
	return s.batch
}

// publishEvents publishes and clears the session's pending domain events
func (s *SessionService) publishEvents(ctx context.Context, session *scanning.ScanSession) {
	if s.eventBus == nil {
		return
	}

	for _, event := range session.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	session.ClearDomainEvents()
}
