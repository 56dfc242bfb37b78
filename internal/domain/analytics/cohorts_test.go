package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

func seriesWithTotals(totals ...int) []entities.ActivityPoint {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := make([]entities.ActivityPoint, len(totals))
	for i, total := range totals {
		series[i] = entities.ActivityPoint{Date: base.AddDate(0, i, 0), Total: total}
	}
	return series
}

func TestTrend(t *testing.T) {
	t.Run("nine-fold increase is up and strong", func(t *testing.T) {
		got := Trend(seriesWithTotals(1, 1, 1, 10, 10, 10), "")
		assert.Equal(t, entities.TrendUp, got.Direction)
		assert.Equal(t, entities.TrendStrong, got.Magnitude)
		assert.InDelta(t, 900.0, got.PctChange, 1e-9)
	})

	t.Run("flat series is stable", func(t *testing.T) {
		got := Trend(seriesWithTotals(5, 5, 5, 5), "")
		assert.Equal(t, entities.TrendStable, got.Direction)
		assert.Equal(t, entities.TrendWeak, got.Magnitude)
		assert.Zero(t, got.PctChange)
	})

	t.Run("small change within five percent stays stable", func(t *testing.T) {
		got := Trend(seriesWithTotals(100, 100, 104, 104), "")
		assert.Equal(t, entities.TrendStable, got.Direction)
	})

	t.Run("moderate decline", func(t *testing.T) {
		got := Trend(seriesWithTotals(10, 10, 7, 7), "")
		assert.Equal(t, entities.TrendDown, got.Direction)
		assert.Equal(t, entities.TrendModerate, got.Magnitude)
	})

	t.Run("zero first half guards the division", func(t *testing.T) {
		got := Trend(seriesWithTotals(0, 0, 10, 10), "")
		assert.Zero(t, got.PctChange)
		assert.Equal(t, entities.TrendStable, got.Direction)
	})

	t.Run("fewer than two points is always stable weak zero", func(t *testing.T) {
		got := Trend(seriesWithTotals(42), "")
		assert.Equal(t, entities.TrendResult{Direction: entities.TrendStable, Magnitude: entities.TrendWeak}, got)
	})

	t.Run("per-surface classification reads surface counts", func(t *testing.T) {
		series := seriesWithTotals(0, 0)
		series[0].Counts = map[string]int{SurfaceUsage: 10}
		series[1].Counts = map[string]int{SurfaceUsage: 1}
		got := Trend(series, SurfaceUsage)
		assert.Equal(t, entities.TrendDown, got.Direction)
		assert.Equal(t, entities.TrendStrong, got.Magnitude)
	})
}

func TestBuildActivitySeries(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("exact path groups raw events by calendar month", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		events := []entities.RawUsageEvent{
			{Email: "a@b.co", EventName: "x", Timestamp: time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)},
			{Email: "a@b.co", EventName: "x", Timestamp: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)},
			{Email: "a@b.co", EventName: "x", Timestamp: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		}
		tickets := []entities.RawTicketRecord{
			{ReporterEmail: "a@b.co", CreatedAt: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)},
		}

		series, simulated := BuildActivitySeries(p, events, tickets, 6, now)
		assert.False(t, simulated)
		require.Len(t, series, 6)

		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), series[0].Date, "chronological, oldest first")
		assert.Equal(t, 2, series[3].Counts[SurfaceUsage], "June holds two events")
		assert.Equal(t, 1, series[4].Counts[SurfaceSupport], "July holds one ticket")
		assert.Equal(t, 1, series[5].Total, "August holds one event")
	})

	t.Run("simulated fallback decays from recency", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		seen := now.AddDate(0, 0, -40)
		p.Usage.LastActive = &seen

		series, simulated := BuildActivitySeries(p, nil, nil, 6, now)
		assert.True(t, simulated)
		require.Len(t, series, 6)

		// (240-40) = 200; month i before present: floor(200*(1-i*0.15)/10)
		assert.Equal(t, 5, series[0].Total)  // i=5
		assert.Equal(t, 20, series[5].Total) // i=0
	})

	t.Run("never-active profile simulates a zero series", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		series, simulated := BuildActivitySeries(p, nil, nil, 6, now)
		assert.True(t, simulated)
		for _, point := range series {
			assert.Zero(t, point.Total)
		}
	})
}

func TestBuildCohorts(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	profiles := map[string]*entities.UnifiedUserProfile{
		"early@a.co": entities.NewUnifiedUserProfile("early@a.co"),
		"late@a.co":  entities.NewUnifiedUserProfile("late@a.co"),
		"idle@a.co":  entities.NewUnifiedUserProfile("idle@a.co"),
	}
	profiles["early@a.co"].Derived.EngagementScore = 50
	profiles["late@a.co"].Derived.EngagementScore = 10
	profiles["idle@a.co"].Derived.EngagementScore = 0

	engagement := []*entities.UserEngagementData{
		{Email: "early@a.co", Series: seriesWithTotals(0, 3, 1, 0, 0, 0)}, // first non-zero: April
		{Email: "late@a.co", Series: seriesWithTotals(0, 0, 0, 0, 2, 2)},  // first non-zero: July
		{Email: "idle@a.co", Series: seriesWithTotals(0, 0, 0, 0, 0, 0)},  // never active -> current month
	}

	cohorts := BuildCohorts(profiles, engagement, now)
	require.Len(t, cohorts, 3)

	assert.Equal(t, "2026-04", cohorts[0].Month)
	assert.Equal(t, []string{"early@a.co"}, cohorts[0].MemberEmails)
	assert.InDelta(t, 1.0, cohorts[0].RetentionRate, 1e-9, "score 50 exceeds the retention threshold")

	assert.Equal(t, "2026-07", cohorts[1].Month)
	assert.Zero(t, cohorts[1].RetentionRate)

	assert.Equal(t, "2026-08", cohorts[2].Month, "never-active users onboard now")
	assert.InDelta(t, 0.0, cohorts[2].AvgEngagement, 1e-9)
}
