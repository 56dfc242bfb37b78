// Package sources provides clients for the three upstream systems PulseDesk
// fuses: the ticketing search API, the CRM API, and the usage event feed.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

// TicketClient fetches ticket records from the ticketing search API
type TicketClient struct {
	baseURL    string
	token      string
	maxResults int
	httpClient *http.Client
}

// NewTicketClient creates a ticketing API client
func NewTicketClient(baseURL, token string, maxResults int, timeout time.Duration) *TicketClient {
	return &TicketClient{
		baseURL:    baseURL,
		token:      token,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ticketSearchResponse mirrors the search endpoint envelope
type ticketSearchResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Issues  []ticketIssueItem `json:"issues"`
}

type ticketIssueItem struct {
	ReporterEmail string  `json:"reporterEmail"`
	Organisation  string  `json:"organisation,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	ResolvedAt    *string `json:"resolvedAt,omitempty"`
	RequestType   string  `json:"requestType,omitempty"`
	Satisfaction  *int    `json:"satisfaction,omitempty"`
}

// FetchTickets retrieves all ticket records up to the configured result cap
func (c *TicketClient) FetchTickets(ctx context.Context) ([]entities.RawTicketRecord, error) {
	query := url.Values{}
	query.Set("max_results", strconv.Itoa(c.maxResults))
	query.Set("fields", "reporterEmail,organisation,createdAt,resolvedAt,requestType,satisfaction")

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ticket search request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ticket search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ticket search returned status %d", resp.StatusCode)
	}

	var payload ticketSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode ticket search response: %w", err)
	}
	if !payload.Success {
		return nil, fmt.Errorf("ticket search rejected: %s", payload.Error)
	}

	records := make([]entities.RawTicketRecord, 0, len(payload.Issues))
	for _, issue := range payload.Issues {
		createdAt, err := time.Parse(time.RFC3339, issue.CreatedAt)
		if err != nil {
			continue // unusable without a creation timestamp
		}
		record := entities.RawTicketRecord{
			ReporterEmail: issue.ReporterEmail,
			Organisation:  issue.Organisation,
			CreatedAt:     createdAt,
			RequestType:   issue.RequestType,
			Satisfaction:  issue.Satisfaction,
		}
		if issue.ResolvedAt != nil {
			if resolvedAt, err := time.Parse(time.RFC3339, *issue.ResolvedAt); err == nil {
				record.ResolvedAt = &resolvedAt
			}
		}
		records = append(records, record)
	}

	return records, nil
}
