package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler handles health and service info requests
type SystemHandler struct {
	BaseHandler
	appName   string
	env       string
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(appName, env string) *SystemHandler {
	return &SystemHandler{
		appName:   appName,
		env:       env,
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/ping", h.Ping)
		system.GET("/info", h.Info)
	}
}

// Ping responds to liveness probes
// GET /api/v1/system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, gin.H{"message": "pong"})
}

// Info returns service metadata
// GET /api/v1/system/info
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, gin.H{
		"name":       h.appName,
		"env":        h.env,
		"uptime":     time.Since(h.startedAt).String(),
		"started_at": h.startedAt,
	})
}
