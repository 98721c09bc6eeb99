package scanning

import (
	"github.com/shopadmin/scan-gateway/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeScanSession = "ScanSession"

// Event type constants
const (
	EventTypeSessionOpened  = "ScanSessionOpened"
	EventTypeScanRecorded   = "ScanRecorded"
	EventTypeBatchSubmitted = "ScanBatchSubmitted"
	EventTypeSessionClosed  = "ScanSessionClosed"
)

// SessionOpenedEvent is published when a scan session is created
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	InventoryID string `json:"inventory_id"`
	Mode        string `json:"mode"`
}

// NewSessionOpenedEvent creates a new session opened event
func NewSessionOpenedEvent(s *ScanSession) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionOpened, AggregateTypeScanSession, s.ID, s.TenantID),
		InventoryID:     s.InventoryID.String(),
		Mode:            s.Mode.String(),
	}
}

// EventType returns the event type
func (e *SessionOpenedEvent) EventType() string {
	return EventTypeSessionOpened
}

// ScanRecordedEvent is published when a scan is merged into the session buffer
type ScanRecordedEvent struct {
	shared.BaseDomainEvent
	InventoryID   string `json:"inventory_id"`
	Code          string `json:"code"`
	QuantityDelta int64  `json:"quantity_delta"`
	Quantity      int64  `json:"quantity"`
	Method        string `json:"method"`
}

// NewScanRecordedEvent creates a new scan recorded event
func NewScanRecordedEvent(s *ScanSession, item *ScanLineItem, delta int64) *ScanRecordedEvent {
	return &ScanRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScanRecorded, AggregateTypeScanSession, s.ID, s.TenantID),
		InventoryID:     s.InventoryID.String(),
		Code:            item.Code,
		QuantityDelta:   delta,
		Quantity:        item.Quantity,
		Method:          item.Method.String(),
	}
}

// EventType returns the event type
func (e *ScanRecordedEvent) EventType() string {
	return EventTypeScanRecorded
}

// BatchSubmittedEvent is published after a bulk commit response is received
type BatchSubmittedEvent struct {
	shared.BaseDomainEvent
	InventoryID string `json:"inventory_id"`
	Processed   int    `json:"processed"`
	ErrorsCount int    `json:"errors_count"`
}

// NewBatchSubmittedEvent creates a new batch submitted event
func NewBatchSubmittedEvent(s *ScanSession, result *BulkCommitResult) *BatchSubmittedEvent {
	return &BatchSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchSubmitted, AggregateTypeScanSession, s.ID, s.TenantID),
		InventoryID:     s.InventoryID.String(),
		Processed:       result.Processed,
		ErrorsCount:     result.ErrorsCount,
	}
}

// EventType returns the event type
func (e *BatchSubmittedEvent) EventType() string {
	return EventTypeBatchSubmitted
}

// SessionClosedEvent is published when a scan session is discarded
type SessionClosedEvent struct {
	shared.BaseDomainEvent
	InventoryID string `json:"inventory_id"`
	ItemCount   int    `json:"item_count"`
}

// NewSessionClosedEvent creates a new session closed event
func NewSessionClosedEvent(s *ScanSession) *SessionClosedEvent {
	return &SessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionClosed, AggregateTypeScanSession, s.ID, s.TenantID),
		InventoryID:     s.InventoryID.String(),
		ItemCount:       s.ItemCount(),
	}
}

// EventType returns the event type
func (e *SessionClosedEvent) EventType() string {
	return EventTypeSessionClosed
}
