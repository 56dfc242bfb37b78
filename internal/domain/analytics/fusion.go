package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

// licenseCountField is the CRM custom-field key carrying the license count.
const licenseCountField = "license_count"

// FusionStats reports records dropped during fusion because they carried no
// resolvable identity. Drops are recoverable and never abort the batch.
type FusionStats struct {
	DroppedTickets int `json:"droppedTickets"`
	DroppedPersons int `json:"droppedPersons"`
	DroppedDeals   int `json:"droppedDeals"`
	DroppedEvents  int `json:"droppedEvents"`
}

// Fuse merges the per-source records of a snapshot into one profile per
// normalised email. Sources are applied in a fixed order (tickets, then
// CRM, then usage) and each field follows its own merge rule:
//
//   - satisfaction is last-write-wins (most recent rated ticket)
//   - organisation from CRM overrides any ticket-derived guess
//   - paying is sticky true once any deal is won
//   - display name and job title are first-write-wins
//
// Running Fuse twice over the same snapshot yields structurally identical
// maps; every call allocates fresh state.
func Fuse(snap *entities.SourceSnapshot) (map[string]*entities.UnifiedUserProfile, FusionStats) {
	profiles := make(map[string]*entities.UnifiedUserProfile)
	var stats FusionStats

	fuseTickets(profiles, snap.Tickets, &stats)
	fuseCrm(profiles, snap.Persons, snap.Organisations, snap.Deals, &stats)
	fuseUsage(profiles, snap.Events, &stats)

	return profiles, stats
}

func getOrCreate(profiles map[string]*entities.UnifiedUserProfile, email string) *entities.UnifiedUserProfile {
	if p, exists := profiles[email]; exists {
		return p
	}
	p := entities.NewUnifiedUserProfile(email)
	profiles[email] = p
	return p
}

func fuseTickets(profiles map[string]*entities.UnifiedUserProfile, tickets []entities.RawTicketRecord, stats *FusionStats) {
	// Chronological order makes the satisfaction overwrite genuinely
	// last-write-wins and keeps request-type first-seen order stable.
	ordered := make([]entities.RawTicketRecord, len(tickets))
	copy(ordered, tickets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for _, ticket := range ordered {
		email := NormalizeEmail(ticket.ReporterEmail)
		if !HasIdentity(email) {
			stats.DroppedTickets++
			continue
		}

		p := getOrCreate(profiles, email)
		p.Support.TotalTickets++
		if ticket.ResolvedAt != nil {
			p.Support.ResolvedTickets++
		}

		created := ticket.CreatedAt
		if p.Support.FirstContact == nil || created.Before(*p.Support.FirstContact) {
			first := created
			p.Support.FirstContact = &first
		}
		if p.Support.LastContact == nil || created.After(*p.Support.LastContact) {
			last := created
			p.Support.LastContact = &last
		}

		if ticket.RequestType != "" && !containsString(p.Support.RequestTypes, ticket.RequestType) {
			p.Support.RequestTypes = append(p.Support.RequestTypes, ticket.RequestType)
		}

		if ticket.Satisfaction != nil {
			rating := *ticket.Satisfaction
			p.Support.Satisfaction = &rating
		}

		// Ticket organisation is free text and only a guess; it fills the
		// field when nothing better is known yet.
		if ticket.Organisation != "" && p.Organisation == "" {
			p.Organisation = ticket.Organisation
		}
	}
}

func fuseCrm(profiles map[string]*entities.UnifiedUserProfile, persons []entities.CrmPerson, orgs []entities.CrmOrganisation, deals []entities.CrmDeal, stats *FusionStats) {
	orgNames := make(map[int64]string, len(orgs))
	for _, org := range orgs {
		orgNames[org.ID] = org.Name
	}

	personEmails := make(map[int64]string, len(persons))
	for _, person := range persons {
		email := resolvePersonEmail(person)
		if !HasIdentity(email) {
			stats.DroppedPersons++
			continue
		}
		personEmails[person.ID] = email

		p := getOrCreate(profiles, email)
		contactID := person.ID
		p.Commercial.ContactID = &contactID

		if p.DisplayName == "" {
			p.DisplayName = person.Name
		}
		if p.JobTitle == "" {
			p.JobTitle = person.JobTitle
		}

		// CRM is authoritative for organisation identity: a resolved org
		// name overrides any ticket-derived guess. An unresolvable org id
		// is recoverable and leaves the previous value in place.
		if person.OrganisationID != nil {
			if name, exists := orgNames[*person.OrganisationID]; exists && name != "" {
				p.Organisation = name
			}
		}
	}

	for _, deal := range deals {
		email, exists := personEmails[deal.PersonID]
		if !exists {
			stats.DroppedDeals++
			continue
		}

		p := profiles[email]
		p.Commercial.Deals = append(p.Commercial.Deals, deal)
		p.Commercial.TotalDealValue += deal.Value
		if deal.Status == entities.DealStatusWon {
			// Once true, never reset, even if a later deal is not won.
			p.Commercial.Paying = true
		}
	}

	// Stage and license count depend on deal recency, so they are settled
	// once per profile after all deals have been attached.
	for _, email := range personEmails {
		finalizeCommercial(profiles[email])
	}
}

// resolvePersonEmail picks the first normalisable address of a CRM person.
func resolvePersonEmail(person entities.CrmPerson) string {
	for _, raw := range person.Emails {
		if email := NormalizeEmail(raw); HasIdentity(email) {
			return email
		}
	}
	return ""
}

func finalizeCommercial(p *entities.UnifiedUserProfile) {
	var latestStage time.Time
	var latestLicense time.Time

	for _, deal := range p.Commercial.Deals {
		if deal.Stage != "" && (latestStage.IsZero() || deal.UpdatedAt.After(latestStage)) {
			latestStage = deal.UpdatedAt
			p.Commercial.CurrentStage = deal.Stage
		}
		if raw, exists := deal.CustomFields[licenseCountField]; exists {
			if count, err := strconv.Atoi(raw); err == nil {
				if latestLicense.IsZero() || deal.UpdatedAt.After(latestLicense) {
					latestLicense = deal.UpdatedAt
					p.Commercial.LicenseCount = count
				}
			}
		}
	}
}

func fuseUsage(profiles map[string]*entities.UnifiedUserProfile, events []entities.RawUsageEvent, stats *FusionStats) {
	grouped := make(map[string][]entities.RawUsageEvent)
	var order []string
	for _, event := range events {
		email := NormalizeEmail(event.Email)
		if !HasIdentity(email) {
			stats.DroppedEvents++
			continue
		}
		if _, exists := grouped[email]; !exists {
			order = append(order, email)
		}
		grouped[email] = append(grouped[email], event)
	}

	for _, email := range order {
		group := grouped[email]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})

		// A user seen only in usage events still gets a profile, with the
		// support and commercial facets at their zero defaults.
		p := getOrCreate(profiles, email)
		p.Usage.TotalEvents = len(group)

		first := group[0].Timestamp
		last := group[len(group)-1].Timestamp
		p.Usage.FirstSeen = &first
		p.Usage.LastActive = &last

		for _, event := range group {
			if event.EventName != "" && !containsString(p.Usage.EventNames, event.EventName) {
				p.Usage.EventNames = append(p.Usage.EventNames, event.EventName)
			}
		}

		span := int(last.Sub(first).Hours()/24) + 1
		p.Usage.DaysActiveSpan = span
		p.Usage.EventsPerDay = float64(len(group)) / float64(span)
	}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
