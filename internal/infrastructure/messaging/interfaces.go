// Package messaging defines interfaces for real-time communication.
package messaging

// RunStatusPublisher defines the interface services use to stream analysis
// run phase changes to connected clients.
type RunStatusPublisher interface {
	Publish(event RunStatusEvent)
	ClientCount() int
}
