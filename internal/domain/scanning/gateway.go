package scanning

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopadmin/scan-gateway/internal/domain/shared"
)

// Sentinel errors for remote commit failures. Infrastructure adapters wrap
// these so callers can branch with errors.Is.
var (
	// ErrUnresolvedCode means the inventory service could not match the
	// scanned code to any product
	ErrUnresolvedCode = shared.NewDomainError("UNRESOLVED_CODE", "Scanned code does not match any product")
	// ErrInventoryServiceUnavailable means the inventory service could not
	// be reached or returned a malformed response
	ErrInventoryServiceUnavailable = shared.NewDomainError("UPSTREAM_UNAVAILABLE", "Inventory service is unavailable")
)

// CommitResult is the authoritative record returned by the inventory service
// after a single scan commit
type CommitResult struct {
	ItemID      uuid.UUID
	Code        string
	SKU         string
	ProductName string
	Quantity    int64
	Method      ScanMethod
	Created     bool
	Message     string
}

// BatchLine is one {code, quantity} pair in a bulk commit request
type BatchLine struct {
	Code     string
	Quantity int64
}

// BatchLineResult reports the per-line outcome of a bulk commit
type BatchLineResult struct {
	Code    string
	Success bool
	Message string
}

// BulkCommitResult summarizes a bulk commit. Processed and ErrorsCount are
// reported by the server; Results carries one entry per submitted line.
type BulkCommitResult struct {
	Processed   int
	ErrorsCount int
	Results     []BatchLineResult
}

// HasFailures returns true when at least one line was rejected
func (r *BulkCommitResult) HasFailures() bool {
	return r.ErrorsCount > 0
}

// FailedLines returns the results for rejected lines only
func (r *BulkCommitResult) FailedLines() []BatchLineResult {
	failed := make([]BatchLineResult, 0, r.ErrorsCount)
	for _, res := range r.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	return failed
}

// RemoteInventoryGateway is the port to the inventory-count service that owns
// the persisted scan records. Implementations live in the infrastructure layer.
type RemoteInventoryGateway interface {
	// CommitScan records a single scan against an inventory count
	CommitScan(ctx context.Context, tenantID, inventoryID uuid.UUID, code string, quantity int64) (*CommitResult, error)
	// CommitScanBulk records a buffered batch of scans in one request
	CommitScanBulk(ctx context.Context, tenantID, inventoryID uuid.UUID, lines []BatchLine) (*BulkCommitResult, error)
	// FetchSummary retrieves the server-side scan statistics for an inventory count
	FetchSummary(ctx context.Context, tenantID, inventoryID uuid.UUID) (*ScanSummary, error)
}
