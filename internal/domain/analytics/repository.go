// Package analytics implements the cross-platform engagement analytics
// engine: identity normalisation, profile fusion, organisation aggregation,
// engagement scoring, cohort and trend analysis, and the cross-product
// activity matrix. Every function here is a pure reducer over immutable
// inputs; all I/O lives behind the source interfaces below.
package analytics

import (
	"context"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

// TicketSource defines the contract for fetching helpdesk tickets.
type TicketSource interface {
	// FetchTickets retrieves all tickets within the lookback window.
	FetchTickets(ctx context.Context) ([]entities.RawTicketRecord, error)
}

// CrmSource defines the contract for fetching CRM persons, organisations
// and deals.
type CrmSource interface {
	FetchPersons(ctx context.Context) ([]entities.CrmPerson, error)
	FetchOrganisations(ctx context.Context) ([]entities.CrmOrganisation, error)
	FetchDeals(ctx context.Context) ([]entities.CrmDeal, error)
}

// UsageSource defines the contract for reading the product-usage event feed.
type UsageSource interface {
	// FetchEvents reads and parses the delimited event feed. Malformed rows
	// are dropped, not surfaced as errors.
	FetchEvents(ctx context.Context) ([]entities.RawUsageEvent, error)
}
