package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

// DefaultWindowMonths is the activity-series window, current month included.
const DefaultWindowMonths = 6

// retentionScoreThreshold is the engagement score a cohort member must
// exceed to count as retained.
const retentionScoreThreshold = 20

// simulatedDecayPerMonth is the per-month decay factor of the simulated
// activity heuristic.
const simulatedDecayPerMonth = 0.15

// BuildActivitySeries produces one ActivityPoint per calendar month of the
// window, oldest first. When raw event timestamps exist the series is exact:
// usage events and tickets are grouped by month. Otherwise the series is
// simulated from recency alone, a lossy fallback flagged via the second
// return value so callers can distinguish the two paths.
func BuildActivitySeries(p *entities.UnifiedUserProfile, events []entities.RawUsageEvent, tickets []entities.RawTicketRecord, windowMonths int, now time.Time) ([]entities.ActivityPoint, bool) {
	if windowMonths <= 0 {
		windowMonths = DefaultWindowMonths
	}

	if len(events) == 0 {
		return simulateActivitySeries(p, windowMonths, now), true
	}

	series := make([]entities.ActivityPoint, 0, windowMonths)
	for i := windowMonths - 1; i >= 0; i-- {
		month := monthStart(now).AddDate(0, -i, 0)
		next := month.AddDate(0, 1, 0)

		counts := map[string]int{SurfaceSupport: 0, SurfaceUsage: 0}
		for _, event := range events {
			if !event.Timestamp.Before(month) && event.Timestamp.Before(next) {
				counts[SurfaceUsage]++
			}
		}
		for _, ticket := range tickets {
			if !ticket.CreatedAt.Before(month) && ticket.CreatedAt.Before(next) {
				counts[SurfaceSupport]++
			}
		}

		series = append(series, entities.ActivityPoint{
			Date:   month,
			Counts: counts,
			Total:  counts[SurfaceSupport] + counts[SurfaceUsage],
		})
	}
	return series, false
}

// simulateActivitySeries approximates recent-heavier usage from the recency
// summary when no event-level data exists: month i months before present
// gets max(0, floor((ceiling - daysSinceLastActive) * (1 - i*0.15) / 10)).
func simulateActivitySeries(p *entities.UnifiedUserProfile, windowMonths int, now time.Time) []entities.ActivityPoint {
	inactiveDays := DaysSinceOrCeiling(lastActivity(p), now)

	series := make([]entities.ActivityPoint, 0, windowMonths)
	for i := windowMonths - 1; i >= 0; i-- {
		month := monthStart(now).AddDate(0, -i, 0)
		value := int(math.Floor(float64(ActivityCeilingDays-inactiveDays) * (1 - float64(i)*simulatedDecayPerMonth) / 10))
		if value < 0 {
			value = 0
		}
		series = append(series, entities.ActivityPoint{
			Date:   month,
			Counts: map[string]int{SurfaceUsage: value},
			Total:  value,
		})
	}
	return series
}

// Trend classifies a series by comparing first-half and second-half
// averages. Surface "" classifies the point totals. Series shorter than two
// points are always stable/weak/0.
func Trend(series []entities.ActivityPoint, surface string) entities.TrendResult {
	result := entities.TrendResult{Direction: entities.TrendStable, Magnitude: entities.TrendWeak}
	if len(series) < 2 {
		return result
	}

	half := len(series) / 2
	firstAvg := averageFor(series[:half], surface)
	secondAvg := averageFor(series[half:], surface)

	var pctChange float64
	if firstAvg > 0 {
		pctChange = (secondAvg - firstAvg) / firstAvg * 100
	}
	result.PctChange = pctChange

	abs := math.Abs(pctChange)
	if abs > 5 {
		if pctChange > 0 {
			result.Direction = entities.TrendUp
		} else {
			result.Direction = entities.TrendDown
		}
	}
	switch {
	case abs > 50:
		result.Magnitude = entities.TrendStrong
	case abs > 20:
		result.Magnitude = entities.TrendModerate
	}
	return result
}

func averageFor(points []entities.ActivityPoint, surface string) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0
	for _, point := range points {
		if surface == "" {
			sum += point.Total
		} else {
			sum += point.Counts[surface]
		}
	}
	return float64(sum) / float64(len(points))
}

// BuildUserEngagement assembles the per-user engagement series and trend
// classifications for every fused profile, in ascending email order.
func BuildUserEngagement(profiles map[string]*entities.UnifiedUserProfile, snap *entities.SourceSnapshot, windowMonths int, now time.Time) []*entities.UserEngagementData {
	eventsByEmail := make(map[string][]entities.RawUsageEvent)
	for _, event := range snap.Events {
		if email := NormalizeEmail(event.Email); HasIdentity(email) {
			eventsByEmail[email] = append(eventsByEmail[email], event)
		}
	}
	ticketsByEmail := make(map[string][]entities.RawTicketRecord)
	for _, ticket := range snap.Tickets {
		if email := NormalizeEmail(ticket.ReporterEmail); HasIdentity(email) {
			ticketsByEmail[email] = append(ticketsByEmail[email], ticket)
		}
	}

	engagement := make([]*entities.UserEngagementData, 0, len(profiles))
	for _, email := range sortedEmails(profiles) {
		p := profiles[email]
		series, simulated := BuildActivitySeries(p, eventsByEmail[email], ticketsByEmail[email], windowMonths, now)

		trends := map[string]entities.TrendResult{
			SurfaceSupport: Trend(series, SurfaceSupport),
			SurfaceUsage:   Trend(series, SurfaceUsage),
		}

		engagement = append(engagement, &entities.UserEngagementData{
			Email:     email,
			Series:    series,
			Trends:    trends,
			Overall:   Trend(series, ""),
			Simulated: simulated,
		})
	}
	return engagement
}

// BuildCohorts groups users by onboarding month, the month of the first
// non-zero activity point. A user with no non-zero point is treated as
// onboarding now and joins the current month's cohort. Retention rate is the
// fraction of members whose engagement score exceeds the threshold.
func BuildCohorts(profiles map[string]*entities.UnifiedUserProfile, engagement []*entities.UserEngagementData, now time.Time) []*entities.CohortData {
	seriesByEmail := make(map[string][]entities.ActivityPoint, len(engagement))
	for _, e := range engagement {
		seriesByEmail[e.Email] = e.Series
	}

	cohortMembers := make(map[string][]string)
	for _, email := range sortedEmails(profiles) {
		month := onboardingMonth(seriesByEmail[email], now)
		cohortMembers[month] = append(cohortMembers[month], email)
	}

	months := make([]string, 0, len(cohortMembers))
	for month := range cohortMembers {
		months = append(months, month)
	}
	sort.Strings(months)

	cohorts := make([]*entities.CohortData, 0, len(months))
	for _, month := range months {
		emails := cohortMembers[month]

		var scoreSum float64
		retained := 0
		for _, email := range emails {
			score := profiles[email].Derived.EngagementScore
			scoreSum += float64(score)
			if score > retentionScoreThreshold {
				retained++
			}
		}

		cohorts = append(cohorts, &entities.CohortData{
			Month:         month,
			MemberEmails:  emails,
			AvgEngagement: scoreSum / float64(len(emails)),
			RetentionRate: float64(retained) / float64(len(emails)),
		})
	}
	return cohorts
}

func onboardingMonth(series []entities.ActivityPoint, now time.Time) string {
	for _, point := range series {
		if point.Total > 0 {
			return point.Date.Format("2006-01")
		}
	}
	return monthStart(now).Format("2006-01")
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
