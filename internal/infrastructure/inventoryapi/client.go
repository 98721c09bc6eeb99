package inventoryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/config"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 4 * 1024 * 1024 // 4MB max response

	// unresolvedCodeWireCode is the error code the inventory service uses
	// when a scanned code matches no product
	unresolvedCodeWireCode = "UNRESOLVED_CODE"
)

// Client implements RemoteInventoryGateway against the inventory-count
// service's HTTP API
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new inventory API client
func NewClient(cfg *config.InventoryAPIConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// CommitScan records a single scan against an inventory count
func (c *Client) CommitScan(ctx context.Context, tenantID, inventoryID uuid.UUID, code string, quantity int64) (*scanning.CommitResult, error) {
	path := fmt.Sprintf("/inventory/%s/scan", inventoryID)
	body := scanRequest{Code: code, ActualQuantity: quantity}

	respBody, status, err := c.doRequest(ctx, http.MethodPost, path, tenantID, body)
	if err != nil {
		return nil, err
	}

	var resp scanResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("inventoryapi: failed to parse scan response: %w", scanning.ErrInventoryServiceUnavailable)
	}

	if !resp.IsSuccess() {
		if status == http.StatusNotFound || resp.ErrorCode() == unresolvedCodeWireCode {
			return nil, fmt.Errorf("inventoryapi: code %q: %w", code, scanning.ErrUnresolvedCode)
		}
		return nil, fmt.Errorf("inventoryapi: scan rejected (%s): %w", resp.ErrorCode(), scanning.ErrInventoryServiceUnavailable)
	}
	if resp.Data == nil || resp.Data.InventoryItem == nil {
		return nil, fmt.Errorf("inventoryapi: scan response missing inventory item: %w", scanning.ErrInventoryServiceUnavailable)
	}

	return toCommitResult(code, resp.Data), nil
}

// CommitScanBulk records a buffered batch of scans in one request
func (c *Client) CommitScanBulk(ctx context.Context, tenantID, inventoryID uuid.UUID, lines []scanning.BatchLine) (*scanning.BulkCommitResult, error) {
	path := fmt.Sprintf("/inventory/%s/scan/bulk", inventoryID)

	body := bulkScanRequest{Items: make([]scanRequest, 0, len(lines))}
	for _, line := range lines {
		body.Items = append(body.Items, scanRequest{Code: line.Code, ActualQuantity: line.Quantity})
	}

	respBody, _, err := c.doRequest(ctx, http.MethodPost, path, tenantID, body)
	if err != nil {
		return nil, err
	}

	var resp bulkScanResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("inventoryapi: failed to parse bulk response: %w", scanning.ErrInventoryServiceUnavailable)
	}

	// Partial failures still come back with a result payload; only a
	// missing payload counts as an upstream failure.
	if resp.Data == nil {
		return nil, fmt.Errorf("inventoryapi: empty bulk response (%s): %w", resp.ErrorCode(), scanning.ErrInventoryServiceUnavailable)
	}

	result := &scanning.BulkCommitResult{
		Processed:   resp.Data.Processed,
		ErrorsCount: resp.Data.ErrorsCount,
		Results:     make([]scanning.BatchLineResult, 0, len(resp.Data.Results)),
	}
	for _, line := range resp.Data.Results {
		result.Results = append(result.Results, scanning.BatchLineResult{
			Code:    line.Code,
			Success: line.Success,
			Message: line.Message,
		})
	}

	return result, nil
}

// FetchSummary retrieves the server-side scan statistics for an inventory count
func (c *Client) FetchSummary(ctx context.Context, tenantID, inventoryID uuid.UUID) (*scanning.ScanSummary, error) {
	path := fmt.Sprintf("/inventory/%s/scan/summary", inventoryID)

	respBody, _, err := c.doRequest(ctx, http.MethodGet, path, tenantID, nil)
	if err != nil {
		return nil, err
	}

	var resp summaryResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("inventoryapi: failed to parse summary response: %w", scanning.ErrInventoryServiceUnavailable)
	}

	if !resp.IsSuccess() || resp.Data == nil || resp.Data.Summary == nil {
		return nil, fmt.Errorf("inventoryapi: summary unavailable (%s): %w", resp.ErrorCode(), scanning.ErrInventoryServiceUnavailable)
	}

	summary := resp.Data.Summary
	return &scanning.ScanSummary{
		TotalItems:    summary.TotalItems,
		ScannedItems:  summary.ScannedItems,
		ManualItems:   summary.ManualItems,
		BarcodeScans:  summary.BarcodeScans,
		QRCodeScans:   summary.QRCodeScans,
		Discrepancies: summary.ItemsWithDiscrepancies,
	}, nil
}

// doRequest performs an HTTP request against the inventory service. It retries
// transport-level failures with a short backoff; HTTP error statuses are
// returned to the caller for interpretation.
func (c *Client) doRequest(ctx context.Context, method, path string, tenantID uuid.UUID, body any) ([]byte, int, error) {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("inventoryapi: failed to marshal request: %w", err)
		}
	}

	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, fmt.Errorf("%w: %v", scanning.ErrInventoryServiceUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
			c.logger.Debug("retrying inventory API request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
			)
		}

		var reader io.Reader
		if bodyBytes != nil {
			reader = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, 0, fmt.Errorf("inventoryapi: failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Tenant-ID", tenantID.String())
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}

		return respBody, resp.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("%w: %v", scanning.ErrInventoryServiceUnavailable, lastErr)
}

// toCommitResult converts a wire scan record into the domain result. The
// service does not echo the scanned code back, so the result carries the code
// that was committed.
func toCommitResult(code string, data *scanData) *scanning.CommitResult {
	item := data.InventoryItem
	itemID, _ := uuid.Parse(item.ID)
	return &scanning.CommitResult{
		ItemID:      itemID,
		Code:        code,
		SKU:         item.Product.SKU,
		ProductName: item.Product.Name,
		Quantity:    item.ActualQuantity,
		Method:      scanning.ScanMethod(data.ScanMethod),
		Created:     data.Created,
		Message:     data.Message,
	}
}

// Ensure Client implements RemoteInventoryGateway
var _ scanning.RemoteInventoryGateway = (*Client)(nil)
