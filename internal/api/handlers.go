package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentinelstack/sentinel-ops/internal/services"
)

// Handlers exposes the operations facade over HTTP.
type Handlers struct {
	logger *slog.Logger
	ops    *services.OpsService
}

// NewHandlers constructs the HTTP handler set.
func NewHandlers(logger *slog.Logger, ops *services.OpsService) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{logger: logger, ops: ops}
}

// Register mounts all routes on the supplied engine.
func (h *Handlers) Register(router *gin.Engine) {
	router.GET("/health", h.health)

	v1 := router.Group("/v1")
	v1.GET("/events", h.listEvents)
	v1.GET("/reports", h.listReports)
	v1.GET("/hygiene", h.hygiene)
	v1.GET("/patterns", h.patterns)

	v1.POST("/remediation/scan", h.scan)
	v1.POST("/remediation/enable", h.enableEngine)
	v1.POST("/remediation/disable", h.disableEngine)
	v1.GET("/remediation/status", h.status)
	v1.GET("/remediation/disabled", h.disabledServices)

	v1.POST("/services/:id/restart", h.restartService)
	v1.POST("/services/:id/enable", h.enableService)

	v1.GET("/fleet/summary", h.fleetSummary)
	v1.GET("/fleet/forecast", h.forecast)
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) listEvents(c *gin.Context) {
	events, err := h.ops.Events()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

func (h *Handlers) listReports(c *gin.Context) {
	reports, err := h.ops.Reports()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

func (h *Handlers) hygiene(c *gin.Context) {
	score, err := h.ops.Hygiene(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

func (h *Handlers) patterns(c *gin.Context) {
	mined, err := h.ops.Patterns(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": mined, "count": len(mined)})
}

func (h *Handlers) scan(c *gin.Context) {
	events := h.ops.ScanOnce(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

func (h *Handlers) enableEngine(c *gin.Context) {
	h.ops.Enable()
	c.JSON(http.StatusOK, h.ops.Status())
}

func (h *Handlers) disableEngine(c *gin.Context) {
	h.ops.Disable()
	c.JSON(http.StatusOK, h.ops.Status())
}

func (h *Handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.ops.Status())
}

func (h *Handlers) disabledServices(c *gin.Context) {
	status := h.ops.Status()
	c.JSON(http.StatusOK, gin.H{"disabled_services": status.DisabledServices})
}

func (h *Handlers) restartService(c *gin.Context) {
	serviceID := c.Param("id")
	event, err := h.ops.ManualRestart(c.Request.Context(), serviceID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownService) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown service", "service_id": serviceID})
			return
		}
		h.logger.Error("manual restart failed",
			slog.String("service_id", serviceID),
			slog.Any("error", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "restart failed", "event": event})
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *Handlers) enableService(c *gin.Context) {
	serviceID := c.Param("id")
	if err := h.ops.ReEnable(serviceID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown service", "service_id": serviceID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_id": serviceID, "auto_restart_enabled": true})
}

func (h *Handlers) fleetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.ops.FleetSummary())
}

func (h *Handlers) forecast(c *gin.Context) {
	c.JSON(http.StatusOK, h.ops.Forecast())
}

func (h *Handlers) fail(c *gin.Context, err error) {
	h.logger.Error("request failed",
		slog.String("path", c.FullPath()),
		slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
