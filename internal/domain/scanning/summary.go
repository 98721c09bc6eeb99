package scanning

// ScanSummary aggregates scan statistics for one inventory count
type ScanSummary struct {
	TotalItems    int `json:"total_items"`
	ScannedItems  int `json:"scanned_items"`
	ManualItems   int `json:"manual_items"`
	BarcodeScans  int `json:"barcode_scans"`
	QRCodeScans   int `json:"qr_code_scans"`
	Discrepancies int `json:"discrepancies"`
}

// ProjectSummary builds the summary shown to operators. Server-side statistics
// win when available because they cover scans from other devices; the local
// projection is the fallback when the inventory service cannot be reached.
// Discrepancy counts require expected quantities only the server knows, so the
// local projection always reports zero.
func ProjectSummary(items []*ScanLineItem, server *ScanSummary) ScanSummary {
	if server != nil {
		return *server
	}

	var summary ScanSummary
	summary.TotalItems = len(items)
	for _, item := range items {
		switch item.Method {
		case ScanMethodBarcode:
			summary.BarcodeScans++
		case ScanMethodQRCode:
			summary.QRCodeScans++
		case ScanMethodManual:
			summary.ManualItems++
		}
	}
	summary.ScannedItems = summary.BarcodeScans + summary.QRCodeScans
	return summary
}
