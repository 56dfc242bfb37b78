// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/pulsedeskhq/pulsedesk-go/internal/application/services"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/email"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/messaging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/performance"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/persistence/database"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services (stateless singletons)
	AnalysisService *services.AnalysisService
	DigestService   *services.DigestService
	AuthService     *services.AuthService

	// Infrastructure Dependencies
	RunBroadcaster *messaging.RunBroadcaster
	RunDB          *database.DB
	Logger         *logging.ChanneledLogger
	PerfTracker    *performance.Tracker
}

// Dependencies carries the pre-built infrastructure the container wires in
type Dependencies struct {
	Fetcher        services.SnapshotFetcher
	RunRepository  services.RunRepository
	RunBroadcaster *messaging.RunBroadcaster
	RunDB          *database.DB
	EmailService   email.Service
	Logger         *logging.ChanneledLogger
	PerfTracker    *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(deps Dependencies) *Container {
	return &Container{
		AnalysisService: services.NewAnalysisService(
			deps.Fetcher,
			deps.RunRepository,
			deps.RunBroadcaster,
			deps.Logger,
			deps.PerfTracker,
		),
		DigestService: services.NewDigestService(deps.EmailService, deps.Logger),
		AuthService:   services.NewAuthService(deps.Logger, deps.PerfTracker),

		RunBroadcaster: deps.RunBroadcaster,
		RunDB:          deps.RunDB,
		Logger:         deps.Logger,
		PerfTracker:    deps.PerfTracker,
	}
}
