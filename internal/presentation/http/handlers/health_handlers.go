package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeskhq/pulsedesk-go/internal/application/services"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/performance"
)

// HealthHandlers serves liveness and observability endpoints
type HealthHandlers struct {
	analysisService *services.AnalysisService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(analysisService *services.AnalysisService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{
		analysisService: analysisService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	snapshot := h.perfTracker.TakeSnapshot()
	payload := gin.H{
		"status": "ok",
		"health": snapshot.OverallHealth,
	}
	if latest := h.analysisService.Latest(); latest != nil {
		payload["lastRunId"] = latest.RunID
		payload["lastComputedAt"] = latest.ComputedAt
	}
	c.JSON(http.StatusOK, payload)
}

// GetPerformance handles GET /api/v1/admin/performance
func (h *HealthHandlers) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":  h.perfTracker.GetOverallStats(),
		"alerts": h.perfTracker.GetAlerts(),
	})
}

// GetRunMetrics handles GET /api/v1/admin/runs/:id/metrics
func (h *HealthHandlers) GetRunMetrics(c *gin.Context) {
	runID := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"runId":   runID,
		"metrics": h.perfTracker.GetRunMetrics(runID),
	})
}

// GetLogLevels handles GET /api/v1/admin/logs/levels
func (h *HealthHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"levels": h.logger.GetChannelLevels()})
}

// SetLogLevel handles POST /api/v1/admin/logs/levels
func (h *HealthHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	level, err := parseLogLevel(req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", raw)
	}
}
