// Package services provides application-level orchestration services
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/analytics"
	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/messaging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/performance"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/security"
	"github.com/pulsedeskhq/pulsedesk-go/pkg/config"
)

// SnapshotFetcher pulls the three upstream sources into one snapshot.
type SnapshotFetcher interface {
	Fetch(ctx context.Context) *entities.SourceSnapshot
}

// RunRepository persists the run-history records.
type RunRepository interface {
	Store(run *entities.AnalysisRun) error
	FindRecent(limit int) ([]*entities.AnalysisRun, error)
	Prune(keep int) error
}

// AnalysisService orchestrates one full analysis run: fetch the sources,
// fuse them into profiles, then compute every downstream aggregate over the
// immutable snapshot. The latest result is held for the read endpoints.
type AnalysisService struct {
	fetcher     SnapshotFetcher
	runs        RunRepository
	broadcaster messaging.RunStatusPublisher
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	mu     sync.RWMutex
	latest *entities.AnalysisResult
}

// NewAnalysisService creates a new analysis orchestration service
func NewAnalysisService(fetcher SnapshotFetcher, runs RunRepository, broadcaster messaging.RunStatusPublisher, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalysisService {
	return &AnalysisService{
		fetcher:     fetcher,
		runs:        runs,
		broadcaster: broadcaster,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Latest returns the most recent analysis result, or nil before the first run.
func (s *AnalysisService) Latest() *entities.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// RecentRuns returns the persisted run history, newest first.
func (s *AnalysisService) RecentRuns() ([]*entities.AnalysisRun, error) {
	return s.runs.FindRecent(config.RunHistoryLimit)
}

// Run executes one full analysis run. Each run allocates fresh accumulators
// over its own snapshot, so concurrent runs never share mutable state.
func (s *AnalysisService) Run(ctx context.Context) (*entities.AnalysisResult, error) {
	runID := security.GenerateULID()
	startedAt := time.Now().UTC()
	marker := s.perfTracker.StartOperationWithContext(ctx, "analysis:run", runID)

	s.logger.Analytics().Info("Analysis run started", "runId", runID)
	s.publish(runID, messaging.PhaseFetching, "fetching upstream sources", 0)

	snapshot := s.fetcher.Fetch(ctx)
	if err := ctx.Err(); err != nil {
		marker.SetError(err)
		s.perfTracker.CompleteOperation(marker)
		s.publish(runID, messaging.PhaseFailed, err.Error(), 0)
		return nil, fmt.Errorf("analysis run %s abandoned: %w", runID, err)
	}

	s.publish(runID, messaging.PhaseFusing, "fusing source records", 0)
	fuseMarker := s.perfTracker.StartOperation("analysis:fuse", runID)
	profiles, fusionStats := analytics.Fuse(snapshot)
	s.perfTracker.CompleteOperation(fuseMarker)

	now := time.Now().UTC()
	scoreMarker := s.perfTracker.StartOperation("analysis:score", runID)
	for _, profile := range profiles {
		analytics.ComputeDerived(profile, now)
	}
	s.perfTracker.CompleteOperation(scoreMarker)

	s.publish(runID, messaging.PhaseAggregating, "computing aggregates", len(profiles))

	orgMarker := s.perfTracker.StartOperation("analysis:organisations", runID)
	organisations := analytics.AggregateOrganisations(profiles, now)
	s.perfTracker.CompleteOperation(orgMarker)

	engagementMarker := s.perfTracker.StartOperation("analysis:engagement", runID)
	engagement := analytics.BuildUserEngagement(profiles, snapshot, config.ActivityWindowMonth, now)
	s.perfTracker.CompleteOperation(engagementMarker)

	cohortMarker := s.perfTracker.StartOperation("analysis:cohorts", runID)
	cohorts := analytics.BuildCohorts(profiles, engagement, now)
	s.perfTracker.CompleteOperation(cohortMarker)

	matrix := analytics.CrossSurfaceMatrix(profiles)

	result := &entities.AnalysisResult{
		RunID:         runID,
		ComputedAt:    now,
		Profiles:      profiles,
		Organisations: organisations,
		Engagement:    engagement,
		Cohorts:       cohorts,
		Matrix:        matrix,
		Sources:       snapshot.Statuses,
		Duration:      time.Since(startedAt),
	}

	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	if err := s.persistRun(runID, startedAt, snapshot, result); err != nil {
		// Run history is best effort, the in-memory result already stands.
		s.logger.Analytics().Warn("Failed to persist run history", "error", err.Error(), "runId", runID)
	}

	marker.AddMetadata("profiles", len(profiles))
	marker.AddMetadata("droppedTickets", fusionStats.DroppedTickets)
	marker.AddMetadata("droppedPersons", fusionStats.DroppedPersons)
	marker.AddMetadata("droppedEvents", fusionStats.DroppedEvents)
	s.perfTracker.CompleteOperation(marker)

	s.logger.Analytics().Info("Analysis run completed",
		"runId", runID,
		"profiles", len(profiles),
		"organisations", len(organisations),
		"cohorts", len(cohorts),
		"duration", result.Duration,
	)
	s.publish(runID, messaging.PhaseCompleted, "", len(profiles))

	return result, nil
}

// persistRun stores the run summary and prunes history past the retention limit.
func (s *AnalysisService) persistRun(runID string, startedAt time.Time, snapshot *entities.SourceSnapshot, result *entities.AnalysisResult) error {
	if s.runs == nil {
		return nil
	}

	persistMarker := s.perfTracker.StartOperation("analysis:persist", runID)
	defer s.perfTracker.CompleteOperation(persistMarker)

	var degraded []string
	for _, status := range snapshot.Statuses {
		if !status.Success {
			degraded = append(degraded, status.Source)
		}
	}

	run := &entities.AnalysisRun{
		ID:           runID,
		StartedAt:    startedAt,
		CompletedAt:  time.Now().UTC(),
		ProfileCount: len(result.Profiles),
		OrgCount:     len(result.Organisations),
		TicketCount:  len(snapshot.Tickets),
		PersonCount:  len(snapshot.Persons),
		EventCount:   len(snapshot.Events),
		DegradedSrcs: strings.Join(degraded, ","),
	}

	if err := s.runs.Store(run); err != nil {
		return err
	}
	return s.runs.Prune(config.RunHistoryLimit)
}

func (s *AnalysisService) publish(runID, phase, detail string, profileCount int) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(messaging.RunStatusEvent{
		RunID:        runID,
		Phase:        phase,
		Detail:       detail,
		ProfileCount: profileCount,
	})
}
