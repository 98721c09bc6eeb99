package scanning

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/shopadmin/scan-gateway/internal/domain/shared"
)

// ScanMethod identifies how a product code entered the session
type ScanMethod string

const (
	ScanMethodBarcode ScanMethod = "barcode"
	ScanMethodQRCode  ScanMethod = "qr_code"
	ScanMethodManual  ScanMethod = "manual"
	// ScanMethodPending marks buffered lines that have not been committed yet.
	// It must be replaced by an authoritative method after a successful commit.
	ScanMethodPending ScanMethod = "pending"
)

// IsValid checks if the method is a valid ScanMethod
func (m ScanMethod) IsValid() bool {
	switch m {
	case ScanMethodBarcode, ScanMethodQRCode, ScanMethodManual, ScanMethodPending:
		return true
	}
	return false
}

// IsCommitted returns true for methods the server has vouched for
func (m ScanMethod) IsCommitted() bool {
	return m.IsValid() && m != ScanMethodPending
}

// String returns the string representation of ScanMethod
func (m ScanMethod) String() string {
	return string(m)
}

// SessionMode selects the commit strategy for a scan session
type SessionMode string

const (
	// SessionModeSingle commits every scan event to the server immediately
	SessionModeSingle SessionMode = "single"
	// SessionModeBatch buffers scans locally until an explicit submit
	SessionModeBatch SessionMode = "batch"
)

// IsValid checks if the mode is a valid SessionMode
func (m SessionMode) IsValid() bool {
	return m == SessionModeSingle || m == SessionModeBatch
}

// String returns the string representation of SessionMode
func (m SessionMode) String() string {
	return string(m)
}

// ScanLineItem is one aggregated entry for a single product code within a session.
// The ID is a locally generated placeholder until a server identifier supersedes
// it during reconciliation.
type ScanLineItem struct {
	ID          uuid.UUID
	Code        string
	DisplayName string
	Quantity    int64
	Method      ScanMethod
	// Created is true when the line represents a newly created inventory
	// record rather than an update, as reported by the server on commit.
	Created   bool
	UpdatedAt time.Time
}

// newScanLineItem creates a local line item for a code not seen before
func newScanLineItem(code string, quantity int64, method ScanMethod) *ScanLineItem {
	return &ScanLineItem{
		ID:          uuid.New(),
		Code:        code,
		DisplayName: code, // placeholder until the server resolves the product name
		Quantity:    quantity,
		Method:      method,
		Created:     true,
		UpdatedAt:   time.Now(),
	}
}

// ScanSession is the aggregate root for one inventory-count scanning activity.
// It owns the in-memory working set of scanned line items, keyed by product
// code so repeated scans of the same product merge into a single line.
type ScanSession struct {
	shared.TenantAggregateRoot
	InventoryID  uuid.UUID
	Mode         SessionMode
	QuantityStep int64
	Items        map[string]*ScanLineItem
}

// NewScanSession creates a scan session scoped to one inventory
func NewScanSession(tenantID, inventoryID uuid.UUID, mode SessionMode) (*ScanSession, error) {
	if inventoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVENTORY", "Inventory ID cannot be empty")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", "Session mode must be single or batch")
	}

	s := &ScanSession{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InventoryID:         inventoryID,
		Mode:                mode,
		QuantityStep:        1,
		Items:               make(map[string]*ScanLineItem),
	}

	s.AddDomainEvent(NewSessionOpenedEvent(s))

	return s, nil
}

// RecordScan merges a decoded code into the working set. An existing line for
// the same code absorbs the quantity delta; otherwise a new line is created.
// A committed scan method is never downgraded back to pending.
func (s *ScanSession) RecordScan(code string, quantityDelta int64, method ScanMethod) (*ScanLineItem, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if quantityDelta < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity delta must be at least 1")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_SCAN_METHOD", "Unknown scan method")
	}

	item, ok := s.Items[code]
	if ok {
		item.Quantity += quantityDelta
		if item.Method == ScanMethodPending && method.IsCommitted() {
			item.Method = method
		}
		item.UpdatedAt = time.Now()
	} else {
		item = newScanLineItem(code, quantityDelta, method)
		s.Items[code] = item
	}

	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	s.AddDomainEvent(NewScanRecordedEvent(s, item, quantityDelta))

	return item, nil
}

// AdjustQuantity applies a positive or negative delta to a line item. A result
// of zero or below removes the line entirely; the returned item is nil in that
// case. Used for manual correction before a batch submit.
func (s *ScanSession) AdjustQuantity(itemID uuid.UUID, delta int64) (*ScanLineItem, error) {
	item, code := s.itemByID(itemID)
	if item == nil {
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found in session")
	}

	item.Quantity += delta
	if item.Quantity <= 0 {
		delete(s.Items, code)
		item = nil
	} else {
		item.UpdatedAt = time.Now()
	}

	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return item, nil
}

// Remove unconditionally removes a line item from the buffer
func (s *ScanSession) Remove(itemID uuid.UUID) error {
	item, code := s.itemByID(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found in session")
	}

	delete(s.Items, code)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Clear empties the working set after a successful batch submission
func (s *ScanSession) Clear() {
	s.Items = make(map[string]*ScanLineItem)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Reconcile folds an authoritative commit result back into the matching line.
// The local quantity is preserved: the user may have scanned again while the
// commit was in flight, and the local view wins until the next sync. A result
// for a line that has been pruned in the meantime is discarded; the return
// value reports whether the result was applied.
func (s *ScanSession) Reconcile(result *CommitResult) bool {
	if result == nil {
		return false
	}

	item, ok := s.Items[result.Code]
	if !ok {
		return false
	}

	if result.ItemID != uuid.Nil {
		item.ID = result.ItemID
	}
	if result.ProductName != "" {
		item.DisplayName = result.ProductName
	}
	if result.Method.IsCommitted() {
		item.Method = result.Method
	}
	item.Created = result.Created
	item.UpdatedAt = time.Now()

	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return true
}

// SetMode switches the commit strategy. Already-buffered items are kept as-is;
// switching modes never duplicates or loses lines.
func (s *ScanSession) SetMode(mode SessionMode) error {
	if !mode.IsValid() {
		return shared.NewDomainError("INVALID_MODE", "Session mode must be single or batch")
	}

	s.Mode = mode
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetQuantityStep sets the quantity applied to the next scan event
func (s *ScanSession) SetQuantityStep(step int64) error {
	if step < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity step must be at least 1")
	}

	s.QuantityStep = step
	s.UpdatedAt = time.Now()

	return nil
}

// ResetQuantityStep restores the ergonomic default after a committed scan
func (s *ScanSession) ResetQuantityStep() {
	s.QuantityStep = 1
	s.UpdatedAt = time.Now()
}

// ItemCount returns the number of distinct lines in the working set
func (s *ScanSession) ItemCount() int {
	return len(s.Items)
}

// SortedItems returns the line items most-recent-first, the order scan UIs
// present them in
func (s *ScanSession) SortedItems() []*ScanLineItem {
	items := make([]*ScanLineItem, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].Code < items[j].Code
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return items
}

// BatchLines derives the {code, quantity} pairs for a bulk commit
func (s *ScanSession) BatchLines() []BatchLine {
	items := s.SortedItems()
	lines := make([]BatchLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, BatchLine{Code: item.Code, Quantity: item.Quantity})
	}
	return lines
}

// itemByID finds a line item and its map key by placeholder or server ID
func (s *ScanSession) itemByID(itemID uuid.UUID) (*ScanLineItem, string) {
	for code, item := range s.Items {
		if item.ID == itemID {
			return item, code
		}
	}
	return nil, ""
}
