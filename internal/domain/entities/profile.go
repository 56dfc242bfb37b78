package entities

import "time"

// Churn risk tiers produced by the risk classifier.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// SupportFacet holds the ticketing-derived slice of a profile.
type SupportFacet struct {
	TotalTickets    int        `json:"totalTickets"`
	ResolvedTickets int        `json:"resolvedTickets"`
	FirstContact    *time.Time `json:"firstContact,omitempty"`
	LastContact     *time.Time `json:"lastContact,omitempty"`
	Satisfaction    *int       `json:"satisfaction,omitempty"` // most recently observed rating
	RequestTypes    []string   `json:"requestTypes,omitempty"` // deduplicated, first-seen order
}

// CommercialFacet holds the CRM-derived slice of a profile.
type CommercialFacet struct {
	ContactID      *int64    `json:"contactId,omitempty"`
	Deals          []CrmDeal `json:"deals,omitempty"`
	TotalDealValue float64   `json:"totalDealValue"`
	CurrentStage   string    `json:"currentStage,omitempty"` // stage of the most recently updated deal
	Paying         bool      `json:"paying"`                 // sticky once any deal is won
	LicenseCount   int       `json:"licenseCount"`
}

// UsageFacet holds the product-usage slice of a profile.
type UsageFacet struct {
	TotalEvents    int        `json:"totalEvents"`
	EventNames     []string   `json:"eventNames,omitempty"` // distinct features, first-seen order
	FirstSeen      *time.Time `json:"firstSeen,omitempty"`
	LastActive     *time.Time `json:"lastActive,omitempty"`
	EventsPerDay   float64    `json:"eventsPerDay"`
	DaysActiveSpan int        `json:"daysActiveSpan"`
}

// DerivedFacet holds values computed from the other three facets.
type DerivedFacet struct {
	EngagementScore int     `json:"engagementScore"` // 0-100
	ChurnRisk       string  `json:"churnRisk"`       // "low", "medium" or "high"
	SupportToSales  bool    `json:"supportToSales"`  // ticket history converted into a won deal
	LifetimeValue   float64 `json:"lifetimeValue"`   // total won deal value
}

// UnifiedUserProfile is the central fused entity: one per normalised email.
// A profile absent from a source keeps that facet at its zero value rather
// than being omitted from the map.
type UnifiedUserProfile struct {
	Email        string          `json:"email"` // normalised, unique
	DisplayName  string          `json:"displayName,omitempty"`
	Organisation string          `json:"organisation,omitempty"` // empty until resolved
	JobTitle     string          `json:"jobTitle,omitempty"`
	Support      SupportFacet    `json:"support"`
	Commercial   CommercialFacet `json:"commercial"`
	Usage        UsageFacet      `json:"usage"`
	Derived      DerivedFacet    `json:"derived"`
}

// NewUnifiedUserProfile creates an empty profile for a normalised email.
func NewUnifiedUserProfile(email string) *UnifiedUserProfile {
	return &UnifiedUserProfile{Email: email}
}
