package scanning

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
)

// CommitStrategy decides how a recorded scan reaches the inventory service
type CommitStrategy interface {
	// Record merges the scan into the session and performs whatever remote
	// commit the strategy calls for
	Record(ctx context.Context, session *scanning.ScanSession, code string, method scanning.ScanMethod) (*RecordScanResponse, error)
}

// immediateStrategy commits every scan to the inventory service as it happens.
// The local line keeps its optimistic state when the commit fails; the failure
// is surfaced in the response instead of rolling the scan back.
type immediateStrategy struct {
	gateway scanning.RemoteInventoryGateway
	logger  *zap.Logger
}

func (st *immediateStrategy) Record(ctx context.Context, session *scanning.ScanSession, code string, method scanning.ScanMethod) (*RecordScanResponse, error) {
	step := session.QuantityStep

	// The line stays pending until the service confirms it; the method the
	// service assigns supersedes the capture method reported by the client
	item, err := session.RecordScan(code, step, scanning.ScanMethodPending)
	if err != nil {
		return nil, err
	}
	session.ResetQuantityStep()

	result, err := st.gateway.CommitScan(ctx, session.TenantID, session.InventoryID, code, step)
	if err != nil {
		st.logger.Warn("scan commit failed, keeping local line",
			zap.String("inventory_id", session.InventoryID.String()),
			zap.String("code", code),
			zap.Error(err),
		)
		return &RecordScanResponse{
			Item:      ToLineItemResponse(item),
			Synced:    false,
			SyncError: err.Error(),
		}, nil
	}

	if !result.Method.IsCommitted() {
		result.Method = method
	}
	session.Reconcile(result)

	return &RecordScanResponse{
		Item:   ToLineItemResponse(item),
		Synced: true,
	}, nil
}

// batchStrategy buffers scans locally as pending lines. Nothing reaches the
// inventory service until an explicit submit.
type batchStrategy struct{}

func (st *batchStrategy) Record(ctx context.Context, session *scanning.ScanSession, code string, method scanning.ScanMethod) (*RecordScanResponse, error) {
	step := session.QuantityStep

	item, err := session.RecordScan(code, step, scanning.ScanMethodPending)
	if err != nil {
		return nil, err
	}
	session.ResetQuantityStep()

	return &RecordScanResponse{
		Item:   ToLineItemResponse(item),
		Synced: false,
	}, nil
}
