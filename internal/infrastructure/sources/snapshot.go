package sources

import (
	"context"
	"sync"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/analytics"
	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
)

// SnapshotFetcher pulls all three sources concurrently into one immutable
// snapshot. A failed source degrades to an empty contribution and is
// reported through its SourceStatus rather than aborting the run.
type SnapshotFetcher struct {
	tickets analytics.TicketSource
	crm     analytics.CrmSource
	usage   analytics.UsageSource
	logger  *logging.ChanneledLogger
	timeout time.Duration
}

// NewSnapshotFetcher creates a snapshot fetcher over the three source clients
func NewSnapshotFetcher(tickets analytics.TicketSource, crm analytics.CrmSource, usage analytics.UsageSource, logger *logging.ChanneledLogger, timeout time.Duration) *SnapshotFetcher {
	return &SnapshotFetcher{
		tickets: tickets,
		crm:     crm,
		usage:   usage,
		logger:  logger,
		timeout: timeout,
	}
}

// Fetch pulls all sources in parallel and assembles the snapshot
func (f *SnapshotFetcher) Fetch(ctx context.Context) *entities.SourceSnapshot {
	fetchCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	snapshot := &entities.SourceSnapshot{FetchedAt: time.Now().UTC()}
	statuses := make([]entities.SourceStatus, 3)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		statuses[0] = f.fetchTickets(fetchCtx, snapshot)
	}()
	go func() {
		defer wg.Done()
		statuses[1] = f.fetchCrm(fetchCtx, snapshot)
	}()
	go func() {
		defer wg.Done()
		statuses[2] = f.fetchUsage(fetchCtx, snapshot)
	}()

	wg.Wait()
	snapshot.Statuses = statuses
	return snapshot
}

func (f *SnapshotFetcher) fetchTickets(ctx context.Context, snapshot *entities.SourceSnapshot) entities.SourceStatus {
	start := time.Now()
	status := entities.SourceStatus{Source: entities.SourceTicketing}

	if f.tickets == nil {
		status.Error = "ticketing source not configured"
		status.Duration = time.Since(start)
		return status
	}

	tickets, err := f.tickets.FetchTickets(ctx)
	status.Duration = time.Since(start)
	if err != nil {
		status.Error = err.Error()
		f.log(status)
		return status
	}

	snapshot.Tickets = tickets
	status.Success = true
	status.RecordCount = len(tickets)
	f.log(status)
	return status
}

func (f *SnapshotFetcher) fetchCrm(ctx context.Context, snapshot *entities.SourceSnapshot) entities.SourceStatus {
	start := time.Now()
	status := entities.SourceStatus{Source: entities.SourceCrm}

	if f.crm == nil {
		status.Error = "crm source not configured"
		status.Duration = time.Since(start)
		return status
	}

	persons, err := f.crm.FetchPersons(ctx)
	if err == nil {
		snapshot.Persons = persons
		var organisations []entities.CrmOrganisation
		organisations, err = f.crm.FetchOrganisations(ctx)
		if err == nil {
			snapshot.Organisations = organisations
			var deals []entities.CrmDeal
			deals, err = f.crm.FetchDeals(ctx)
			if err == nil {
				snapshot.Deals = deals
			}
		}
	}

	status.Duration = time.Since(start)
	if err != nil {
		// A partial CRM read is discarded so fusion sees a consistent view.
		snapshot.Persons = nil
		snapshot.Organisations = nil
		snapshot.Deals = nil
		status.Error = err.Error()
		f.log(status)
		return status
	}

	status.Success = true
	status.RecordCount = len(snapshot.Persons) + len(snapshot.Organisations) + len(snapshot.Deals)
	f.log(status)
	return status
}

func (f *SnapshotFetcher) fetchUsage(ctx context.Context, snapshot *entities.SourceSnapshot) entities.SourceStatus {
	start := time.Now()
	status := entities.SourceStatus{Source: entities.SourceUsage}

	if f.usage == nil {
		status.Error = "usage source not configured"
		status.Duration = time.Since(start)
		return status
	}

	events, err := f.usage.FetchEvents(ctx)
	status.Duration = time.Since(start)
	if err != nil {
		status.Error = err.Error()
		f.log(status)
		return status
	}

	snapshot.Events = events
	status.Success = true
	status.RecordCount = len(events)
	f.log(status)
	return status
}

func (f *SnapshotFetcher) log(status entities.SourceStatus) {
	if f.logger == nil {
		return
	}
	f.logger.LogSourceFetch(status.Source, status.Success, status.RecordCount, status.Duration)
}
