package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
)

// Run lifecycle phases streamed to connected dashboards.
const (
	PhaseFetching    = "fetching"
	PhaseFusing      = "fusing"
	PhaseAggregating = "aggregating"
	PhaseCompleted   = "completed"
	PhaseFailed      = "failed"
)

// RunClient represents a single connected dashboard client.
type RunClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// RunStatusEvent is the payload sent to the frontend on each phase change.
type RunStatusEvent struct {
	RunID        string    `json:"runId"`
	Phase        string    `json:"phase"`
	Detail       string    `json:"detail,omitempty"`
	ProfileCount int       `json:"profileCount,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// RunBroadcaster manages all connected run-status clients and fans out
// status events as an analysis run moves through its phases.
type RunBroadcaster struct {
	clients    map[*RunClient]bool
	register   chan *RunClient
	unregister chan *RunClient
	events     chan RunStatusEvent
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewRunBroadcaster creates a new broadcaster instance.
func NewRunBroadcaster(logger *logging.ChanneledLogger) *RunBroadcaster {
	return &RunBroadcaster{
		clients:    make(map[*RunClient]bool),
		register:   make(chan *RunClient),
		unregister: make(chan *RunClient),
		events:     make(chan RunStatusEvent, 64),
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *RunBroadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			b.logger.Stream().Info("Run-status client registered", "clients", b.ClientCount())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.Stream().Info("Run-status client unregistered", "clients", b.ClientCount())

		case event := <-b.events:
			b.fanOut(event)
		}
	}
}

// Register queues a client for registration.
func (b *RunBroadcaster) Register(client *RunClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *RunBroadcaster) Unregister(client *RunClient) {
	b.unregister <- client
}

// Publish queues a run-status event for broadcast. Non-blocking: if the
// event buffer is full the event is dropped, status streaming is advisory.
func (b *RunBroadcaster) Publish(event RunStatusEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case b.events <- event:
	default:
		b.logger.Stream().Warn("Run-status event dropped, buffer full", "runId", event.RunID, "phase", event.Phase)
	}
}

// ClientCount returns the number of currently connected clients.
func (b *RunBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// fanOut serialises one event and sends it to every connected client.
func (b *RunBroadcaster) fanOut(event RunStatusEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		b.logger.Stream().Error("Failed to marshal run-status event", "error", err.Error(), "runId", event.RunID)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
			// Slow client, skip this event rather than block the loop.
		}
	}
}

// WritePump drains a client's send channel onto its websocket connection.
// Runs as a goroutine per connection and exits when the channel closes.
func (b *RunBroadcaster) WritePump(client *RunClient) {
	defer client.Conn.Close()
	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
