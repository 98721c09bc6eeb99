package inventoryapi

// envelope is the response wrapper used by the inventory-count service
type envelope struct {
	Success bool       `json:"success"`
	Error   *wireError `json:"error,omitempty"`
}

// wireError carries the machine-readable error code and message
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IsSuccess returns true when the request was accepted
func (e *envelope) IsSuccess() bool {
	return e.Success
}

// ErrorCode returns the error code, or empty string when there is none
func (e *envelope) ErrorCode() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Code
}

// ErrorMessage returns the error message, or empty string when there is none
func (e *envelope) ErrorMessage() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Message
}

// scanRequest is one scan line as the inventory service expects it
type scanRequest struct {
	Code           string `json:"code"`
	ActualQuantity int64  `json:"actual_quantity"`
}

// productInfo identifies the product an inventory line resolved to
type productInfo struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// inventoryItem is the authoritative inventory line echoed back by the service
type inventoryItem struct {
	ID             string      `json:"id"`
	Product        productInfo `json:"product"`
	ActualQuantity int64       `json:"actual_quantity"`
}

// scanData carries the outcome of a single scan commit
type scanData struct {
	InventoryItem *inventoryItem `json:"inventory_item"`
	ScanMethod    string         `json:"scan_method"`
	Created       bool           `json:"created"`
	Message       string         `json:"message"`
}

// scanResponse wraps a single scan commit result
type scanResponse struct {
	envelope
	Data *scanData `json:"data,omitempty"`
}

// bulkScanRequest is the body for a bulk scan commit
type bulkScanRequest struct {
	Items []scanRequest `json:"items"`
}

// bulkResultData reports per-line outcomes of a bulk commit
type bulkResultData struct {
	Processed   int              `json:"processed"`
	ErrorsCount int              `json:"errors_count"`
	Results     []bulkLineResult `json:"results"`
}

// bulkLineResult is one line outcome within a bulk commit response
type bulkLineResult struct {
	Code    string `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// bulkScanResponse wraps a bulk scan commit result
type bulkScanResponse struct {
	envelope
	Data *bulkResultData `json:"data,omitempty"`
}

// summaryData carries server-side scan statistics
type summaryData struct {
	TotalItems             int `json:"total_items"`
	ScannedItems           int `json:"scanned_items"`
	ManualItems            int `json:"manual_items"`
	BarcodeScans           int `json:"barcode_scans"`
	QRCodeScans            int `json:"qr_code_scans"`
	ItemsWithDiscrepancies int `json:"items_with_discrepancies"`
}

// summaryPayload nests the statistics under the service's summary key
type summaryPayload struct {
	Summary *summaryData `json:"summary"`
}

// summaryResponse wraps a summary fetch result
type summaryResponse struct {
	envelope
	Data *summaryPayload `json:"data,omitempty"`
}
