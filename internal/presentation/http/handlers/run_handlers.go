package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pulsedeskhq/pulsedesk-go/internal/application/services"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/messaging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
)

// RunHandlers serves the run-history view and the run-status websocket stream
type RunHandlers struct {
	analysisService *services.AnalysisService
	broadcaster     *messaging.RunBroadcaster
	logger          *logging.ChanneledLogger
	upgrader        websocket.Upgrader
}

// NewRunHandlers creates run handlers with injected dependencies
func NewRunHandlers(analysisService *services.AnalysisService, broadcaster *messaging.RunBroadcaster, logger *logging.ChanneledLogger) *RunHandlers {
	return &RunHandlers{
		analysisService: analysisService,
		broadcaster:     broadcaster,
		logger:          logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// GetRuns handles GET /api/v1/runs - the persisted run history, newest first
func (h *RunHandlers) GetRuns(c *gin.Context) {
	runs, err := h.analysisService.RecentRuns()
	if err != nil {
		h.logger.Database().Error("Failed to load run history", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// StreamRunStatus handles GET /api/v1/runs/stream - upgrades to a websocket
// that receives run-status events for every analysis run
func (h *RunHandlers) StreamRunStatus(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Stream().Error("Websocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.RunClient{
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	h.broadcaster.Register(client)

	go h.broadcaster.WritePump(client)

	// Read loop exists only to observe the close handshake.
	go func() {
		defer h.broadcaster.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
