package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

func TestSummarize(t *testing.T) {
	t.Run("five-number summary uses lower order statistics", func(t *testing.T) {
		got := Summarize([]int{25, 5, 15, 10, 20})
		assert.Equal(t, entities.FiveNumberSummary{Min: 5, Q1: 10, Median: 15, Q3: 20, Max: 25}, got)
	})

	t.Run("even length picks the lower middle element", func(t *testing.T) {
		got := Summarize([]int{1, 2, 3, 4})
		assert.Equal(t, 2, got.Median, "floor(0.5*3) = index 1")
	})

	t.Run("single value", func(t *testing.T) {
		got := Summarize([]int{7})
		assert.Equal(t, entities.FiveNumberSummary{Min: 7, Q1: 7, Median: 7, Q3: 7, Max: 7}, got)
	})

	t.Run("empty set forces the sentinel ceiling, not an error", func(t *testing.T) {
		got := Summarize(nil)
		assert.Equal(t, ActivityCeilingDays, got.Median)
		assert.Equal(t, ActivityCeilingDays, got.Min)
		assert.Equal(t, ActivityCeilingDays, got.Max)
	})
}

func TestAggregateOrganisations(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	lastActive := func(daysAgo int) *time.Time {
		ts := now.AddDate(0, 0, -daysAgo)
		return &ts
	}

	profiles := map[string]*entities.UnifiedUserProfile{}
	addMember := func(email, org string, tickets int, dealValue float64, score int, usageDaysAgo int, features ...string) {
		p := entities.NewUnifiedUserProfile(email)
		p.Organisation = org
		p.Support.TotalTickets = tickets
		p.Commercial.TotalDealValue = dealValue
		p.Derived.EngagementScore = score
		if usageDaysAgo >= 0 {
			p.Usage.LastActive = lastActive(usageDaysAgo)
			p.Usage.TotalEvents = 1
		}
		p.Usage.EventNames = features
		profiles[email] = p
	}

	addMember("a@acme.com", "Acme", 3, 1000, 40, 2, "export", "search")
	addMember("b@acme.com", "Acme", 1, 500, 60, 10, "search")
	addMember("c@acme.com", "Acme", 0, 0, 20, -1, "alerts")
	addMember("lone@other.io", "", 0, 0, 10, -1)

	stats := AggregateOrganisations(profiles, now)
	require.Len(t, stats, 2)

	acme := stats["Acme"]
	require.NotNil(t, acme)

	t.Run("sums and averages", func(t *testing.T) {
		assert.Equal(t, 3, acme.UserCount)
		assert.Equal(t, 4, acme.TotalTickets)
		assert.Equal(t, 1500.0, acme.TotalDealValue)
		assert.InDelta(t, 40.0, acme.AvgEngagement, 1e-9)
	})

	t.Run("top features ranked by member count then first seen", func(t *testing.T) {
		require.Len(t, acme.TopFeatures, 3)
		assert.Equal(t, entities.FeatureCount{Feature: "search", Count: 2}, acme.TopFeatures[0])
		// "export" and "alerts" both have one member; "export" was seen
		// first (members iterate in email order).
		assert.Equal(t, "export", acme.TopFeatures[1].Feature)
		assert.Equal(t, "alerts", acme.TopFeatures[2].Feature)
	})

	t.Run("usage recency excludes members without usage data", func(t *testing.T) {
		usage := acme.Recency[SurfaceUsage]
		assert.Equal(t, 2, usage.Min)
		assert.Equal(t, 10, usage.Max)
		assert.Equal(t, 2, usage.Median, "two qualifying members, lower middle")
	})

	t.Run("surface with no qualifying users yields the ceiling median", func(t *testing.T) {
		support := acme.Recency[SurfaceSupport]
		assert.Equal(t, ActivityCeilingDays, support.Median)
	})

	t.Run("profiles without an organisation land in the Unknown bucket", func(t *testing.T) {
		unknown := stats[UnknownOrganisation]
		require.NotNil(t, unknown)
		assert.Equal(t, 1, unknown.UserCount)
		assert.Zero(t, unknown.ConversionRate, "zero denominator guards to zero")
	})
}

func TestTopFeaturesKeepsFive(t *testing.T) {
	counts := map[string]int{"a": 9, "b": 8, "c": 7, "d": 6, "e": 5, "f": 4}
	order := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3, "e": 4, "f": 5}
	top := topFeatures(counts, order)
	require.Len(t, top, 5)
	assert.Equal(t, "a", top[0].Feature)
	assert.Equal(t, "e", top[4].Feature)
}
