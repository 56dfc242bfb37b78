package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

func TestComputeEngagementScore(t *testing.T) {
	t.Run("empty profile scores zero", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		assert.Equal(t, 0, ComputeEngagementScore(p))
	})

	t.Run("each term contributes and caps individually", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Usage.TotalEvents = 100 // 100/10 = 10
		p.Usage.EventNames = []string{"a", "b", "c"}
		p.Usage.EventsPerDay = 1.0 // 5
		// 10 + 6 + 5 = 21
		assert.Equal(t, 21, ComputeEngagementScore(p))
	})

	t.Run("paying and satisfaction bonuses", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Commercial.Paying = true
		p.Support.Satisfaction = intPtr(4)
		assert.Equal(t, 30, ComputeEngagementScore(p))
	})

	t.Run("satisfaction below four earns no bonus", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Support.Satisfaction = intPtr(3)
		assert.Equal(t, 0, ComputeEngagementScore(p))
	})

	t.Run("score is bounded at 100", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Usage.TotalEvents = 100000
		p.Usage.EventNames = make([]string, 50)
		p.Usage.EventsPerDay = 500
		p.Commercial.Paying = true
		p.Support.Satisfaction = intPtr(5)
		assert.Equal(t, 100, ComputeEngagementScore(p))
	})

	t.Run("rounded to nearest integer", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Usage.TotalEvents = 5 // 0.5
		assert.Equal(t, 1, ComputeEngagementScore(p))
	})
}

func TestClassifyChurnRisk(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	lastActive := func(daysAgo int) *time.Time {
		ts := now.AddDate(0, 0, -daysAgo)
		return &ts
	}

	t.Run("priority chain: paying and inactive beats medium signals", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Commercial.Paying = true
		p.Usage.LastActive = lastActive(35)
		p.Support.Satisfaction = intPtr(2)
		assert.Equal(t, entities.RiskHigh, ClassifyChurnRisk(p, now))
	})

	t.Run("non-paying inactive over fourteen days is medium", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Usage.LastActive = lastActive(20)
		assert.Equal(t, entities.RiskMedium, ClassifyChurnRisk(p, now))
	})

	t.Run("low satisfaction alone is medium", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Usage.LastActive = lastActive(1)
		p.Support.Satisfaction = intPtr(2)
		assert.Equal(t, entities.RiskMedium, ClassifyChurnRisk(p, now))
	})

	t.Run("recently active and satisfied is low", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Usage.LastActive = lastActive(3)
		p.Support.Satisfaction = intPtr(5)
		assert.Equal(t, entities.RiskLow, ClassifyChurnRisk(p, now))
	})

	t.Run("never active defaults far beyond every threshold", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		assert.Equal(t, entities.RiskMedium, ClassifyChurnRisk(p, now))
		p.Commercial.Paying = true
		assert.Equal(t, entities.RiskHigh, ClassifyChurnRisk(p, now))
	})

	t.Run("support contact counts as activity", func(t *testing.T) {
		p := entities.NewUnifiedUserProfile("a@b.co")
		p.Support.LastContact = lastActive(2)
		assert.Equal(t, entities.RiskLow, ClassifyChurnRisk(p, now))
	})
}

func TestComputeDerived(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	p := entities.NewUnifiedUserProfile("a@b.co")
	p.Support.TotalTickets = 2
	p.Commercial.Paying = true
	p.Commercial.Deals = []entities.CrmDeal{
		{Value: 5000, Status: entities.DealStatusWon},
		{Value: 700, Status: entities.DealStatusOpen},
	}
	ComputeDerived(p, now)

	assert.True(t, p.Derived.SupportToSales)
	assert.Equal(t, 5000.0, p.Derived.LifetimeValue, "only won deals count toward lifetime value")
	assert.GreaterOrEqual(t, p.Derived.EngagementScore, 0)
	assert.LessOrEqual(t, p.Derived.EngagementScore, 100)
	assert.Equal(t, entities.RiskHigh, p.Derived.ChurnRisk)
}
