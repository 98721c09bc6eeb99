package scanning

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
)

// ===================== Request DTOs =====================

// OpenSessionRequest represents a request to open a scan session
type OpenSessionRequest struct {
	Mode string `json:"mode" binding:"omitempty,oneof=single batch"`
}

// RecordScanRequest represents a decoded code entering the session
type RecordScanRequest struct {
	Code   string `json:"code" binding:"required,min=1,max=128,scancode"`
	Method string `json:"method" binding:"omitempty,oneof=barcode qr_code manual"`
}

// AdjustQuantityRequest represents a manual quantity correction
type AdjustQuantityRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

// SetModeRequest represents a commit strategy switch
type SetModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=single batch"`
}

// SetQuantityStepRequest sets the quantity applied to the next scan
type SetQuantityStepRequest struct {
	Step int64 `json:"step" binding:"required,min=1"`
}

// ===================== Response DTOs =====================

// LineItemResponse represents one scan line in API responses
type LineItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	DisplayName string    `json:"display_name"`
	Quantity    int64     `json:"quantity"`
	Method      string    `json:"method"`
	Created     bool      `json:"created"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SessionResponse represents a scan session in API responses
type SessionResponse struct {
	ID           uuid.UUID          `json:"id"`
	TenantID     uuid.UUID          `json:"tenant_id"`
	InventoryID  uuid.UUID          `json:"inventory_id"`
	Mode         string             `json:"mode"`
	QuantityStep int64              `json:"quantity_step"`
	ItemCount    int                `json:"item_count"`
	Items        []LineItemResponse `json:"items"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Version      int                `json:"version"`
}

// RecordScanResponse represents the outcome of one scan event. In single mode
// Synced reports whether the immediate commit reached the inventory service;
// the line item keeps its optimistic local state either way.
type RecordScanResponse struct {
	Item      LineItemResponse `json:"item"`
	Synced    bool             `json:"synced"`
	SyncError string           `json:"sync_error,omitempty"`
}

// AdjustQuantityResponse represents a quantity correction outcome. Item is
// omitted when the adjustment pruned the line.
type AdjustQuantityResponse struct {
	Item   *LineItemResponse `json:"item,omitempty"`
	Pruned bool              `json:"pruned"`
}

// BatchFailureResponse reports one rejected line from a bulk commit
type BatchFailureResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubmitBatchResponse represents the outcome of a batch submission
type SubmitBatchResponse struct {
	Submitted   int                    `json:"submitted"`
	Processed   int                    `json:"processed"`
	ErrorsCount int                    `json:"errors_count"`
	Cleared     bool                   `json:"cleared"`
	Failures    []BatchFailureResponse `json:"failures,omitempty"`
}

// SummaryResponse represents scan statistics. Source reports whether the
// numbers came from the inventory service or the local buffer.
type SummaryResponse struct {
	scanning.ScanSummary
	Source string `json:"source"`
}

// Summary sources
const (
	SummarySourceServer = "server"
	SummarySourceLocal  = "local"
)

// ===================== Conversion Functions =====================

// ToLineItemResponse converts a domain line item to a response DTO
func ToLineItemResponse(item *scanning.ScanLineItem) LineItemResponse {
	return LineItemResponse{
		ID:          item.ID,
		Code:        item.Code,
		DisplayName: item.DisplayName,
		Quantity:    item.Quantity,
		Method:      item.Method.String(),
		Created:     item.Created,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToSessionResponse converts a domain session to a response DTO
func ToSessionResponse(s *scanning.ScanSession) SessionResponse {
	items := s.SortedItems()
	itemResponses := make([]LineItemResponse, 0, len(items))
	for _, item := range items {
		itemResponses = append(itemResponses, ToLineItemResponse(item))
	}

	return SessionResponse{
		ID:           s.ID,
		TenantID:     s.TenantID,
		InventoryID:  s.InventoryID,
		Mode:         s.Mode.String(),
		QuantityStep: s.QuantityStep,
		ItemCount:    len(items),
		Items:        itemResponses,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Version:      s.Version,
	}
}
