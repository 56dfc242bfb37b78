// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeskhq/pulsedesk-go/internal/application/services"
	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/performance"
)

// AnalyticsHandlers contains all analytics-related HTTP handlers
type AnalyticsHandlers struct {
	analysisService *services.AnalysisService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies
func NewAnalyticsHandlers(analysisService *services.AnalysisService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		analysisService: analysisService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// PostRun handles POST /api/v1/analysis/run - triggers a full analysis run
func (h *AnalyticsHandlers) PostRun(c *gin.Context) {
	start := time.Now()
	h.logger.Analytics().Debug("Received analysis run request", "method", c.Request.Method, "path", c.Request.URL.Path)

	result, err := h.analysisService.Run(c.Request.Context())
	if err != nil {
		h.logger.Analytics().Error("Analysis run failed", "error", err.Error(), "duration", time.Since(start))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runId":        result.RunID,
		"computedAt":   result.ComputedAt,
		"profileCount": len(result.Profiles),
		"orgCount":     len(result.Organisations),
		"cohortCount":  len(result.Cohorts),
		"sources":      result.Sources,
		"durationMs":   result.Duration.Milliseconds(),
	})
}

// GetProfiles handles GET /api/v1/analysis/profiles
func (h *AnalyticsHandlers) GetProfiles(c *gin.Context) {
	result, ok := h.requireResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"runId": result.RunID, "profiles": result.Profiles})
}

// GetOrganisations handles GET /api/v1/analysis/organisations
func (h *AnalyticsHandlers) GetOrganisations(c *gin.Context) {
	result, ok := h.requireResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"runId": result.RunID, "organisations": result.Organisations})
}

// GetEngagement handles GET /api/v1/analysis/engagement
func (h *AnalyticsHandlers) GetEngagement(c *gin.Context) {
	result, ok := h.requireResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"runId": result.RunID, "engagement": result.Engagement})
}

// GetCohorts handles GET /api/v1/analysis/cohorts
func (h *AnalyticsHandlers) GetCohorts(c *gin.Context) {
	result, ok := h.requireResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"runId": result.RunID, "cohorts": result.Cohorts})
}

// GetMatrix handles GET /api/v1/analysis/matrix
func (h *AnalyticsHandlers) GetMatrix(c *gin.Context) {
	result, ok := h.requireResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"runId": result.RunID, "matrix": result.Matrix})
}

// GetAll handles GET /api/v1/analysis/all - the full result in one payload
func (h *AnalyticsHandlers) GetAll(c *gin.Context) {
	result, ok := h.requireResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// requireResult fetches the latest result or answers 404 before a first run.
func (h *AnalyticsHandlers) requireResult(c *gin.Context) (*entities.AnalysisResult, bool) {
	result := h.analysisService.Latest()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis result available, trigger a run first"})
		return nil, false
	}
	return result, true
}
