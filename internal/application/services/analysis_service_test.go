package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/performance"
)

type stubFetcher struct {
	snapshot *entities.SourceSnapshot
}

func (f *stubFetcher) Fetch(ctx context.Context) *entities.SourceSnapshot {
	return f.snapshot
}

type memoryRunRepo struct {
	stored []*entities.AnalysisRun
}

func (r *memoryRunRepo) Store(run *entities.AnalysisRun) error {
	r.stored = append(r.stored, run)
	return nil
}

func (r *memoryRunRepo) FindRecent(limit int) ([]*entities.AnalysisRun, error) {
	if len(r.stored) > limit {
		return r.stored[:limit], nil
	}
	return r.stored, nil
}

func (r *memoryRunRepo) Prune(keep int) error { return nil }

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: false,
		OutputToFile:    false,
	})
	require.NoError(t, err)
	return logger
}

func testSnapshot() *entities.SourceSnapshot {
	created := time.Now().AddDate(0, 0, -5)
	return &entities.SourceSnapshot{
		Tickets: []entities.RawTicketRecord{
			{ReporterEmail: "jane@acme.com", Organisation: "acme", CreatedAt: created},
		},
		Events: []entities.RawUsageEvent{
			{Email: "jane@acme.com", EventName: "search", Timestamp: time.Now().AddDate(0, 0, -2)},
			{Email: "solo@other.io", EventName: "export", Timestamp: time.Now().AddDate(0, 0, -1)},
		},
		FetchedAt: time.Now(),
		Statuses: []entities.SourceStatus{
			{Source: entities.SourceTicketing, Success: true, RecordCount: 1},
			{Source: entities.SourceCrm, Success: false, Error: "crm unreachable"},
			{Source: entities.SourceUsage, Success: true, RecordCount: 2},
		},
	}
}

func TestAnalysisServiceRun(t *testing.T) {
	repo := &memoryRunRepo{}
	service := NewAnalysisService(
		&stubFetcher{snapshot: testSnapshot()},
		repo,
		nil,
		testLogger(t),
		performance.NewTracker(nil),
	)

	result, err := service.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	t.Run("result carries every aggregate", func(t *testing.T) {
		assert.NotEmpty(t, result.RunID)
		assert.Len(t, result.Profiles, 2)
		assert.NotEmpty(t, result.Organisations)
		assert.Len(t, result.Engagement, 2)
		assert.NotEmpty(t, result.Cohorts)
		require.NotNil(t, result.Matrix)
		assert.Equal(t, 2, result.Matrix.Total)
	})

	t.Run("degraded source is surfaced, not fatal", func(t *testing.T) {
		require.Len(t, result.Sources, 3)
		profile := result.Profiles["jane@acme.com"]
		require.NotNil(t, profile)
		assert.False(t, profile.Commercial.Paying, "commercial facet stays at defaults when crm is down")
		assert.Equal(t, 1, profile.Support.TotalTickets)
	})

	t.Run("latest result holder is updated", func(t *testing.T) {
		assert.Same(t, result, service.Latest())
	})

	t.Run("run history records the degraded source", func(t *testing.T) {
		require.Len(t, repo.stored, 1)
		run := repo.stored[0]
		assert.Equal(t, result.RunID, run.ID)
		assert.Equal(t, 2, run.ProfileCount)
		assert.Equal(t, "crm", run.DegradedSrcs)
	})
}

func TestAnalysisServiceRunsAreIndependent(t *testing.T) {
	service := NewAnalysisService(
		&stubFetcher{snapshot: testSnapshot()},
		&memoryRunRepo{},
		nil,
		testLogger(t),
		performance.NewTracker(nil),
	)

	first, err := service.Run(context.Background())
	require.NoError(t, err)
	second, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.NotSame(t, first.Profiles, second.Profiles, "each run allocates fresh accumulators")
	assert.Same(t, second, service.Latest())
}

func TestAnalysisServiceCancelledContext(t *testing.T) {
	service := NewAnalysisService(
		&stubFetcher{snapshot: testSnapshot()},
		&memoryRunRepo{},
		nil,
		testLogger(t),
		performance.NewTracker(nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Run(ctx)
	assert.Error(t, err)
	assert.Nil(t, service.Latest())
}
