package entities

import "time"

// FiveNumberSummary is the min/Q1/median/Q3/max summary of a recency
// distribution, in whole days since last activity.
type FiveNumberSummary struct {
	Min    int `json:"min"`
	Q1     int `json:"q1"`
	Median int `json:"median"`
	Q3     int `json:"q3"`
	Max    int `json:"max"`
}

// FeatureCount pairs a feature (event name) with how many organisation
// members used it.
type FeatureCount struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}

// OrganisationStats aggregates member profiles for one organisation bucket.
// Profiles without a resolved organisation land in the "Unknown" bucket.
type OrganisationStats struct {
	Name           string                       `json:"name"`
	UserCount      int                          `json:"userCount"`
	TotalTickets   int                          `json:"totalTickets"`
	TotalDealValue float64                      `json:"totalDealValue"`
	AvgEngagement  float64                      `json:"avgEngagement"`
	ConversionRate float64                      `json:"conversionRate"` // fraction of ticketed members who became paying
	TopFeatures    []FeatureCount               `json:"topFeatures"`
	Recency        map[string]FiveNumberSummary `json:"recency"` // keyed by surface
}

// ActivityPoint is one calendar month of activity for a user, broken down
// by surface.
type ActivityPoint struct {
	Date   time.Time      `json:"date"` // first instant of the month, UTC
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// Trend direction values.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Trend magnitude values.
const (
	TrendWeak     = "weak"
	TrendModerate = "moderate"
	TrendStrong   = "strong"
)

// TrendResult classifies an activity series by comparing first-half and
// second-half averages.
type TrendResult struct {
	Direction string  `json:"direction"` // "up", "down" or "stable"
	Magnitude string  `json:"magnitude"` // "weak", "moderate" or "strong"
	PctChange float64 `json:"pctChange"`
}

// UserEngagementData carries one user's monthly activity series and trend
// classifications for the dashboard charts.
type UserEngagementData struct {
	Email     string                 `json:"email"`
	Series    []ActivityPoint        `json:"series"`
	Trends    map[string]TrendResult `json:"trends"` // per surface
	Overall   TrendResult            `json:"overall"`
	Simulated bool                   `json:"simulated"` // series built from the recency heuristic, not raw events
}

// CohortData groups users sharing the same onboarding month.
type CohortData struct {
	Month         string   `json:"month"` // "2006-01"
	MemberEmails  []string `json:"memberEmails"`
	AvgEngagement float64  `json:"avgEngagement"`
	RetentionRate float64  `json:"retentionRate"` // fraction of members above the retention score threshold
}

// ActivityMatrix is the 2x2 contingency table over two activity predicates.
// Cells are indexed [a][b] where index 1 means the predicate held. Only
// emails for which at least one predicate holds are counted, so the sum of
// all cells equals the size of the union of the two true-sets.
type ActivityMatrix struct {
	LabelA string    `json:"labelA"`
	LabelB string    `json:"labelB"`
	Cells  [2][2]int `json:"cells"`
	Total  int       `json:"total"`
}

// AnalysisResult is the full output of one analysis run: every aggregate the
// presentation layer consumes, plus per-source fetch outcomes. All fields are
// plain serializable records.
type AnalysisResult struct {
	RunID         string                         `json:"runId"`
	ComputedAt    time.Time                      `json:"computedAt"`
	Profiles      map[string]*UnifiedUserProfile `json:"profiles"`
	Organisations map[string]*OrganisationStats  `json:"organisations"`
	Engagement    []*UserEngagementData          `json:"engagement"`
	Cohorts       []*CohortData                  `json:"cohorts"`
	Matrix        *ActivityMatrix                `json:"matrix"`
	Sources       []SourceStatus                 `json:"sources"`
	Duration      time.Duration                  `json:"duration"`
}

// AnalysisRun is the persisted record of one run for the run-history view.
type AnalysisRun struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"startedAt"`
	CompletedAt  time.Time `json:"completedAt"`
	ProfileCount int       `json:"profileCount"`
	OrgCount     int       `json:"orgCount"`
	TicketCount  int       `json:"ticketCount"`
	PersonCount  int       `json:"personCount"`
	EventCount   int       `json:"eventCount"`
	DegradedSrcs string    `json:"degradedSources,omitempty"` // comma separated source names
}
