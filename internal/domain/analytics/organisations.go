package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

// UnknownOrganisation is the bucket for profiles without a resolved
// organisation. Assigning to it is the recoverable default, never a failure.
const UnknownOrganisation = "Unknown"

// Surface identifiers for per-surface recency summaries.
const (
	SurfaceSupport = "support"
	SurfaceUsage   = "usage"
)

// topFeatureCount is how many most-used features each organisation reports.
const topFeatureCount = 5

// AggregateOrganisations rolls fused profiles up into per-organisation
// statistics. Every profile lands in exactly one bucket. Member iteration is
// in ascending email order so feature tie-breaking (frequency descending,
// then first-seen) is stable across runs.
func AggregateOrganisations(profiles map[string]*entities.UnifiedUserProfile, now time.Time) map[string]*entities.OrganisationStats {
	emails := sortedEmails(profiles)

	members := make(map[string][]*entities.UnifiedUserProfile)
	for _, email := range emails {
		p := profiles[email]
		org := p.Organisation
		if org == "" {
			org = UnknownOrganisation
		}
		members[org] = append(members[org], p)
	}

	stats := make(map[string]*entities.OrganisationStats, len(members))
	for org, orgMembers := range members {
		stats[org] = aggregateOrganisation(org, orgMembers, now)
	}
	return stats
}

func aggregateOrganisation(name string, members []*entities.UnifiedUserProfile, now time.Time) *entities.OrganisationStats {
	org := &entities.OrganisationStats{
		Name:      name,
		UserCount: len(members),
		Recency:   make(map[string]entities.FiveNumberSummary),
	}

	var engagementSum float64
	var ticketedMembers, convertedMembers int
	featureCounts := make(map[string]int)
	featureOrder := make(map[string]int)

	var supportDays, usageDays []int

	for _, p := range members {
		org.TotalTickets += p.Support.TotalTickets
		org.TotalDealValue += p.Commercial.TotalDealValue
		engagementSum += float64(p.Derived.EngagementScore)

		if p.Support.TotalTickets > 0 {
			ticketedMembers++
			if p.Derived.SupportToSales {
				convertedMembers++
			}
		}

		for _, feature := range p.Usage.EventNames {
			if _, seen := featureCounts[feature]; !seen {
				featureOrder[feature] = len(featureOrder)
			}
			featureCounts[feature]++
		}

		// Users with no data for a surface are excluded from that
		// surface's quartile source set.
		if d := DaysSince(p.Support.LastContact, now); d != nil {
			supportDays = append(supportDays, *d)
		}
		if d := DaysSince(p.Usage.LastActive, now); d != nil {
			usageDays = append(usageDays, *d)
		}
	}

	if len(members) > 0 {
		org.AvgEngagement = engagementSum / float64(len(members))
	}
	if ticketedMembers > 0 {
		org.ConversionRate = float64(convertedMembers) / float64(ticketedMembers)
	}

	org.TopFeatures = topFeatures(featureCounts, featureOrder)
	org.Recency[SurfaceSupport] = Summarize(supportDays)
	org.Recency[SurfaceUsage] = Summarize(usageDays)

	return org
}

// topFeatures ranks features by member count descending, ties broken by
// first-seen order, and keeps the top five.
func topFeatures(counts map[string]int, order map[string]int) []entities.FeatureCount {
	ranked := make([]entities.FeatureCount, 0, len(counts))
	for feature, count := range counts {
		ranked = append(ranked, entities.FeatureCount{Feature: feature, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return order[ranked[i].Feature] < order[ranked[j].Feature]
	})
	if len(ranked) > topFeatureCount {
		ranked = ranked[:topFeatureCount]
	}
	return ranked
}

// Summarize computes the five-number summary of a recency distribution using
// the lower-order-statistic nearest-rank method: sort ascending, quartile(p)
// picks the element at index floor(p*(n-1)). Historical dashboard figures
// depend on this exact rule, so no linear interpolation. An empty input set
// yields the sentinel ceiling across the board instead of an error.
func Summarize(days []int) entities.FiveNumberSummary {
	if len(days) == 0 {
		return entities.FiveNumberSummary{
			Min:    ActivityCeilingDays,
			Q1:     ActivityCeilingDays,
			Median: ActivityCeilingDays,
			Q3:     ActivityCeilingDays,
			Max:    ActivityCeilingDays,
		}
	}

	sorted := make([]int, len(days))
	copy(sorted, days)
	sort.Ints(sorted)

	return entities.FiveNumberSummary{
		Min:    sorted[0],
		Q1:     quartile(sorted, 0.25),
		Median: quartile(sorted, 0.5),
		Q3:     quartile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

func quartile(sorted []int, p float64) int {
	index := int(math.Floor(p * float64(len(sorted)-1)))
	return sorted[index]
}

func sortedEmails(profiles map[string]*entities.UnifiedUserProfile) []string {
	emails := make([]string, 0, len(profiles))
	for email := range profiles {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}
