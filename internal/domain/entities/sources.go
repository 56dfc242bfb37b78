// Package entities provides domain entities for the engagement analytics
// pipeline. It defines the raw per-source records pulled from the ticketing,
// CRM and product-usage systems, the fused per-user profile, and the
// aggregate structures served to the dashboard.
package entities

import "time"

// RawTicketRecord represents a single helpdesk ticket as returned by the
// ticketing search API. Records are immutable snapshots for one analysis run.
type RawTicketRecord struct {
	ReporterEmail string     `json:"reporterEmail"`
	Organisation  string     `json:"organisation,omitempty"` // free text, a guess until CRM confirms
	CreatedAt     time.Time  `json:"createdAt"`
	ResolvedAt    *time.Time `json:"resolvedAt,omitempty"`
	RequestType   string     `json:"requestType,omitempty"`
	Satisfaction  *int       `json:"satisfaction,omitempty"` // 1-5 when rated
}

// CrmPerson represents a CRM contact. A person may carry several email
// addresses; the first normalisable one becomes the join key.
type CrmPerson struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Emails         []string `json:"emails"`
	OrganisationID *int64   `json:"organisationId,omitempty"`
	JobTitle       string   `json:"jobTitle,omitempty"`
}

// CrmOrganisation represents a CRM organisation entity keyed by numeric id.
type CrmOrganisation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Deal status values as reported by the CRM.
const (
	DealStatusWon  = "won"
	DealStatusLost = "lost"
	DealStatusOpen = "open"
)

// CrmDeal represents a CRM deal linked to a person.
type CrmDeal struct {
	ID           int64             `json:"id"`
	PersonID     int64             `json:"personId"`
	Title        string            `json:"title"`
	Value        float64           `json:"value"`
	Stage        string            `json:"stage"`
	Status       string            `json:"status"` // "won", "lost" or "open"
	UpdatedAt    time.Time         `json:"updatedAt"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// RawUsageEvent represents one row of the product-usage event feed.
type RawUsageEvent struct {
	Email      string            `json:"email"`
	EventName  string            `json:"eventName"`
	Timestamp  time.Time         `json:"timestamp"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Source identifiers used in fetch reporting and run history.
const (
	SourceTicketing = "ticketing"
	SourceCrm       = "crm"
	SourceUsage     = "usage"
)

// SourceStatus reports the outcome of one source fetch within a run. A failed
// fetch degrades that source to an empty contribution instead of aborting.
type SourceStatus struct {
	Source      string        `json:"source"`
	Success     bool          `json:"success"`
	RecordCount int           `json:"recordCount"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// SourceSnapshot is the immutable bundle of raw records one analysis run
// operates on. Each run fetches a fresh snapshot; nothing is shared between
// concurrent runs.
type SourceSnapshot struct {
	Tickets       []RawTicketRecord `json:"tickets"`
	Persons       []CrmPerson       `json:"persons"`
	Organisations []CrmOrganisation `json:"organisations"`
	Deals         []CrmDeal         `json:"deals"`
	Events        []RawUsageEvent   `json:"events"`
	FetchedAt     time.Time         `json:"fetchedAt"`
	Statuses      []SourceStatus    `json:"statuses"`
}
