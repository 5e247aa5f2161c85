package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockcore/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// QueueStats reports webhook delivery queue counters
type QueueStats interface {
	Len() int
	Delivered() int64
	Failed() int64
	Dropped() int64
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	db        Pinger
	queue     QueueStats
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, queue QueueStats) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		db:        db,
		queue:     queue,
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Webhooks map[string]string `json:"webhooks,omitempty"`
}

// Health reports service and dependency health. Registered at the
// engine root, outside the versioned API group.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "ok"}
	statusCode := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`

	WebhooksPending   int   `json:"webhooks_pending"`
	WebhooksDelivered int64 `json:"webhooks_delivered"`
	WebhooksFailed    int64 `json:"webhooks_failed"`
	WebhooksDropped   int64 `json:"webhooks_dropped"`
}

// GetSystemInfo returns version, uptime and webhook queue counters
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "StockCore API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.queue != nil {
		info.WebhooksPending = h.queue.Len()
		info.WebhooksDelivered = h.queue.Delivered()
		info.WebhooksFailed = h.queue.Failed()
		info.WebhooksDropped = h.queue.Dropped()
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}
