package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

func ts(day int, hour int) time.Time {
	return time.Date(2026, 8, day, hour, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func testSnapshot() *entities.SourceSnapshot {
	resolved := ts(3, 10)
	return &entities.SourceSnapshot{
		Tickets: []entities.RawTicketRecord{
			{ReporterEmail: " Jane@Acme.com ", Organisation: "acme (guessed)", CreatedAt: ts(1, 9), RequestType: "bug", Satisfaction: intPtr(5)},
			{ReporterEmail: "jane@acme.com", CreatedAt: ts(5, 9), ResolvedAt: &resolved, RequestType: "bug", Satisfaction: intPtr(2)},
			{ReporterEmail: "jane@acme.com", CreatedAt: ts(7, 9), RequestType: "billing"},
			{ReporterEmail: "", CreatedAt: ts(2, 9)}, // no identity, dropped
		},
		Persons: []entities.CrmPerson{
			{ID: 1, Name: "Jane Doe", Emails: []string{"JANE@ACME.COM"}, OrganisationID: int64Ptr(11), JobTitle: "CTO"},
			{ID: 2, Name: "No Address", Emails: []string{"  "}}, // dropped
		},
		Organisations: []entities.CrmOrganisation{{ID: 11, Name: "Acme Corporation"}},
		Deals: []entities.CrmDeal{
			{ID: 100, PersonID: 1, Value: 5000, Stage: "negotiation", Status: entities.DealStatusWon, UpdatedAt: ts(10, 0), CustomFields: map[string]string{"license_count": "25"}},
			{ID: 101, PersonID: 1, Value: 1200, Stage: "qualified", Status: entities.DealStatusOpen, UpdatedAt: ts(12, 0)},
			{ID: 102, PersonID: 99, Value: 900, Stage: "lost", Status: entities.DealStatusLost, UpdatedAt: ts(12, 0)}, // unknown person, dropped
		},
		Events: []entities.RawUsageEvent{
			{Email: "jane@acme.com", EventName: "report.export", Timestamp: ts(20, 8)},
			{Email: "jane@acme.com", EventName: "dashboard.view", Timestamp: ts(20, 14)},
			{Email: "jane@acme.com", EventName: "dashboard.view", Timestamp: ts(22, 9)},
			{Email: "solo@nowhere.io", EventName: "dashboard.view", Timestamp: ts(21, 9)},
			{Email: "", EventName: "dashboard.view", Timestamp: ts(21, 9)}, // dropped
		},
	}
}

func TestFuse(t *testing.T) {
	profiles, stats := Fuse(testSnapshot())

	require.Len(t, profiles, 2)
	jane := profiles["jane@acme.com"]
	require.NotNil(t, jane)

	t.Run("drop counts", func(t *testing.T) {
		assert.Equal(t, 1, stats.DroppedTickets)
		assert.Equal(t, 1, stats.DroppedPersons)
		assert.Equal(t, 1, stats.DroppedDeals)
		assert.Equal(t, 1, stats.DroppedEvents)
	})

	t.Run("support facet", func(t *testing.T) {
		assert.Equal(t, 3, jane.Support.TotalTickets)
		assert.Equal(t, 1, jane.Support.ResolvedTickets)
		assert.Equal(t, ts(1, 9), *jane.Support.FirstContact)
		assert.Equal(t, ts(7, 9), *jane.Support.LastContact)
		assert.Equal(t, []string{"bug", "billing"}, jane.Support.RequestTypes)
	})

	t.Run("satisfaction is last-write-wins", func(t *testing.T) {
		// The most recent rated ticket carries 2; the unrated one after it
		// must not clear the value.
		require.NotNil(t, jane.Support.Satisfaction)
		assert.Equal(t, 2, *jane.Support.Satisfaction)
	})

	t.Run("crm organisation overrides ticket guess", func(t *testing.T) {
		assert.Equal(t, "Acme Corporation", jane.Organisation)
		assert.Equal(t, "Jane Doe", jane.DisplayName)
		assert.Equal(t, "CTO", jane.JobTitle)
	})

	t.Run("commercial facet", func(t *testing.T) {
		assert.Len(t, jane.Commercial.Deals, 2)
		assert.Equal(t, 6200.0, jane.Commercial.TotalDealValue)
		assert.True(t, jane.Commercial.Paying)
		assert.Equal(t, "qualified", jane.Commercial.CurrentStage, "stage follows the most recently updated deal")
		assert.Equal(t, 25, jane.Commercial.LicenseCount)
	})

	t.Run("usage facet", func(t *testing.T) {
		assert.Equal(t, 3, jane.Usage.TotalEvents)
		assert.Equal(t, []string{"report.export", "dashboard.view"}, jane.Usage.EventNames)
		assert.Equal(t, ts(20, 8), *jane.Usage.FirstSeen)
		assert.Equal(t, ts(22, 9), *jane.Usage.LastActive)
		assert.Equal(t, 3, jane.Usage.DaysActiveSpan)
		assert.InDelta(t, 1.0, jane.Usage.EventsPerDay, 1e-9)
	})

	t.Run("usage-only user gets a profile with zero defaults", func(t *testing.T) {
		solo := profiles["solo@nowhere.io"]
		require.NotNil(t, solo)
		assert.Equal(t, 0, solo.Support.TotalTickets)
		assert.False(t, solo.Commercial.Paying)
		assert.Zero(t, solo.Commercial.TotalDealValue)
		assert.Equal(t, 1, solo.Usage.TotalEvents)
	})
}

func TestFuseIdempotence(t *testing.T) {
	snap := testSnapshot()
	first, _ := Fuse(snap)
	second, _ := Fuse(snap)
	assert.Equal(t, first, second, "fusing the same snapshot twice must produce structurally identical maps")
}

func TestFuseKeyUniqueness(t *testing.T) {
	profiles, _ := Fuse(testSnapshot())
	for email, p := range profiles {
		assert.Equal(t, email, p.Email)
		assert.Equal(t, NormalizeEmail(email), email, "map keys must already be normalised")
	}
}

func TestFusePayingNeverResets(t *testing.T) {
	snap := &entities.SourceSnapshot{
		Persons: []entities.CrmPerson{{ID: 1, Name: "A", Emails: []string{"a@b.co"}}},
		Deals: []entities.CrmDeal{
			{ID: 1, PersonID: 1, Value: 10, Status: entities.DealStatusWon, UpdatedAt: ts(1, 0)},
			{ID: 2, PersonID: 1, Value: 10, Status: entities.DealStatusLost, UpdatedAt: ts(2, 0)},
		},
	}
	profiles, _ := Fuse(snap)
	assert.True(t, profiles["a@b.co"].Commercial.Paying)
}

func TestFusePartialSources(t *testing.T) {
	// CRM degraded to empty: ticket and usage facets still populate, the
	// commercial facet stays at defaults.
	snap := testSnapshot()
	snap.Persons = nil
	snap.Organisations = nil
	snap.Deals = nil

	profiles, _ := Fuse(snap)
	jane := profiles["jane@acme.com"]
	require.NotNil(t, jane)
	assert.Equal(t, 3, jane.Support.TotalTickets)
	assert.Equal(t, 3, jane.Usage.TotalEvents)
	assert.False(t, jane.Commercial.Paying)
	assert.Zero(t, jane.Commercial.TotalDealValue)
	assert.Equal(t, "acme (guessed)", jane.Organisation, "ticket-derived guess survives when CRM is unavailable")
}
