package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	scanningapp "github.com/shopadmin/scan-gateway/internal/application/scanning"
	"github.com/shopadmin/scan-gateway/internal/interfaces/http/dto"
)

// ScanSessionHandler handles scan session HTTP requests
type ScanSessionHandler struct {
	BaseHandler
	service *scanningapp.SessionService
}

// NewScanSessionHandler creates a new ScanSessionHandler
func NewScanSessionHandler(service *scanningapp.SessionService) *ScanSessionHandler {
	return &ScanSessionHandler{service: service}
}

// RegisterRoutes registers scan session routes
func (h *ScanSessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inventories := rg.Group("/scanning/inventories/:inventory_id")
	{
		session := inventories.Group("/session")
		{
			session.POST("", h.OpenSession)
			session.GET("", h.GetSession)
			session.DELETE("", h.CloseSession)
			session.POST("/scan", h.RecordScan)
			session.POST("/submit", h.SubmitBatch)
			session.PUT("/mode", h.SetMode)
			session.PUT("/quantity-step", h.SetQuantityStep)
			session.POST("/items/:item_id/adjust", h.AdjustItem)
			session.DELETE("/items/:item_id", h.RemoveItem)
		}
		inventories.GET("/summary", h.GetSummary)
	}
}

// bindInventoryID extracts the tenant and inventory IDs from the request
func (h *ScanSessionHandler) bindInventoryID(c *gin.Context) (tenantID, inventoryID uuid.UUID, ok bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}

	var uri dto.InventoryIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid inventory ID")
		return uuid.Nil, uuid.Nil, false
	}

	inventoryID, err = uuid.Parse(uri.InventoryID)
	if err != nil {
		h.BadRequest(c, "Invalid inventory ID")
		return uuid.Nil, uuid.Nil, false
	}

	return tenantID, inventoryID, true
}

// OpenSession opens a scan session for an inventory count
// POST /api/v1/scanning/inventories/:inventory_id/session
func (h *ScanSessionHandler) OpenSession(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	// The body is optional; an absent body opens with defaults
	var req scanningapp.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.service.Open(c.Request.Context(), tenantID, inventoryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// GetSession returns the active session for an inventory count
// GET /api/v1/scanning/inventories/:inventory_id/session
func (h *ScanSessionHandler) GetSession(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	response, err := h.service.Get(c.Request.Context(), tenantID, inventoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// CloseSession discards the session and its uncommitted buffer
// DELETE /api/v1/scanning/inventories/:inventory_id/session
func (h *ScanSessionHandler) CloseSession(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	if err := h.service.Close(c.Request.Context(), tenantID, inventoryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RecordScan records a decoded code against the session
// POST /api/v1/scanning/inventories/:inventory_id/session/scan
func (h *ScanSessionHandler) RecordScan(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	var req scanningapp.RecordScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.service.RecordScan(c.Request.Context(), tenantID, inventoryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// AdjustItem applies a quantity correction to a buffered line
// POST /api/v1/scanning/inventories/:inventory_id/session/items/:item_id/adjust
func (h *ScanSessionHandler) AdjustItem(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req scanningapp.AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.service.AdjustQuantity(c.Request.Context(), tenantID, inventoryID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// RemoveItem drops a buffered line from the session
// DELETE /api/v1/scanning/inventories/:inventory_id/session/items/:item_id
func (h *ScanSessionHandler) RemoveItem(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), tenantID, inventoryID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// SetMode switches the session's commit strategy
// PUT /api/v1/scanning/inventories/:inventory_id/session/mode
func (h *ScanSessionHandler) SetMode(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	var req scanningapp.SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.service.SetMode(c.Request.Context(), tenantID, inventoryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// SetQuantityStep sets the quantity applied to the next scan
// PUT /api/v1/scanning/inventories/:inventory_id/session/quantity-step
func (h *ScanSessionHandler) SetQuantityStep(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	var req scanningapp.SetQuantityStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.service.SetQuantityStep(c.Request.Context(), tenantID, inventoryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// SubmitBatch commits the buffered lines in one bulk request
// POST /api/v1/scanning/inventories/:inventory_id/session/submit
func (h *ScanSessionHandler) SubmitBatch(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	response, err := h.service.SubmitBatch(c.Request.Context(), tenantID, inventoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetSummary returns scan statistics for an inventory count
// GET /api/v1/scanning/inventories/:inventory_id/summary
func (h *ScanSessionHandler) GetSummary(c *gin.Context) {
	tenantID, inventoryID, ok := h.bindInventoryID(c)
	if !ok {
		return
	}

	response, err := h.service.GetSummary(c.Request.Context(), tenantID, inventoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
