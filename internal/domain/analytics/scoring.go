package analytics

import (
	"math"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

// Engagement score term caps. Each term is capped individually before
// summing; the final score is capped at 100.
const (
	usageVolumeCap    = 30.0
	featureBreadthCap = 20.0
	usageIntensityCap = 20.0
	payingBonus       = 20.0
	satisfactionBonus = 10.0
)

// ComputeEngagementScore computes the bounded composite engagement score
// from weighted raw signals, rounded to the nearest integer.
func ComputeEngagementScore(p *entities.UnifiedUserProfile) int {
	score := math.Min(usageVolumeCap, float64(p.Usage.TotalEvents)/10)
	score += math.Min(featureBreadthCap, float64(len(p.Usage.EventNames))*2)
	score += math.Min(usageIntensityCap, p.Usage.EventsPerDay*5)
	if p.Commercial.Paying {
		score += payingBonus
	}
	if p.Support.Satisfaction != nil && *p.Support.Satisfaction >= 4 {
		score += satisfactionBonus
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// ClassifyChurnRisk assigns the discrete churn-risk tier. The checks form a
// strict priority chain: high is evaluated first, the others are mutually
// exclusive fallbacks.
func ClassifyChurnRisk(p *entities.UnifiedUserProfile, now time.Time) string {
	inactiveDays := NeverActiveDays
	if d := DaysSince(lastActivity(p), now); d != nil {
		inactiveDays = *d
	}

	if p.Commercial.Paying && inactiveDays > 30 {
		return entities.RiskHigh
	}
	if inactiveDays > 14 || (p.Support.Satisfaction != nil && *p.Support.Satisfaction < 3) {
		return entities.RiskMedium
	}
	return entities.RiskLow
}

// lastActivity returns the most recent activity timestamp across surfaces,
// or nil for a profile never observed active.
func lastActivity(p *entities.UnifiedUserProfile) *time.Time {
	last := p.Usage.LastActive
	if p.Support.LastContact != nil && (last == nil || p.Support.LastContact.After(*last)) {
		last = p.Support.LastContact
	}
	return last
}

// ComputeDerived fills the derived facet of a profile: engagement score,
// churn-risk tier, support-to-sales conversion flag and lifetime value.
func ComputeDerived(p *entities.UnifiedUserProfile, now time.Time) {
	p.Derived.EngagementScore = ComputeEngagementScore(p)
	p.Derived.ChurnRisk = ClassifyChurnRisk(p, now)
	p.Derived.SupportToSales = p.Support.TotalTickets > 0 && p.Commercial.Paying

	var wonValue float64
	for _, deal := range p.Commercial.Deals {
		if deal.Status == entities.DealStatusWon {
			wonValue += deal.Value
		}
	}
	p.Derived.LifetimeValue = wonValue
}
