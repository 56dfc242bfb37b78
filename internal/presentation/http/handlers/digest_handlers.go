package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeskhq/pulsedesk-go/internal/application/services"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
)

// DigestHandlers serves the at-risk digest send endpoint
type DigestHandlers struct {
	digestService   *services.DigestService
	analysisService *services.AnalysisService
	logger          *logging.ChanneledLogger
}

// NewDigestHandlers creates digest handlers with injected dependencies
func NewDigestHandlers(digestService *services.DigestService, analysisService *services.AnalysisService, logger *logging.ChanneledLogger) *DigestHandlers {
	return &DigestHandlers{
		digestService:   digestService,
		analysisService: analysisService,
		logger:          logger,
	}
}

// PostSendDigest handles POST /api/v1/admin/digest/send
func (h *DigestHandlers) PostSendDigest(c *gin.Context) {
	start := time.Now()

	var req struct {
		Recipients   []string `json:"recipients" binding:"required,min=1"`
		DashboardURL string   `json:"dashboardUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	summary, err := h.digestService.SendAtRiskDigest(h.analysisService.Latest(), req.Recipients, req.DashboardURL)
	if err != nil {
		h.logger.Email().Error("Digest send failed", "error", err.Error(), "duration", time.Since(start))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
