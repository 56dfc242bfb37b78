package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

// CrmClient fetches persons, organisations and deals from the CRM API
type CrmClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewCrmClient creates a CRM API client
func NewCrmClient(baseURL, token string, timeout time.Duration) *CrmClient {
	return &CrmClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type crmPersonItem struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Emails         []string `json:"emails"`
	OrganisationID *int64   `json:"organisationId,omitempty"`
	JobTitle       string   `json:"jobTitle,omitempty"`
}

type crmOrganisationItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type crmDealItem struct {
	ID           int64             `json:"id"`
	PersonID     int64             `json:"personId"`
	Title        string            `json:"title"`
	Value        float64           `json:"value"`
	Stage        string            `json:"stage"`
	Status       string            `json:"status"`
	UpdatedAt    string            `json:"updatedAt"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// FetchPersons retrieves all CRM person records
func (c *CrmClient) FetchPersons(ctx context.Context) ([]entities.CrmPerson, error) {
	var items []crmPersonItem
	if err := c.get(ctx, "/persons", &items); err != nil {
		return nil, fmt.Errorf("failed to fetch crm persons: %w", err)
	}

	persons := make([]entities.CrmPerson, 0, len(items))
	for _, item := range items {
		persons = append(persons, entities.CrmPerson{
			ID:             item.ID,
			Name:           item.Name,
			Emails:         item.Emails,
			OrganisationID: item.OrganisationID,
			JobTitle:       item.JobTitle,
		})
	}
	return persons, nil
}

// FetchOrganisations retrieves all CRM organisation records
func (c *CrmClient) FetchOrganisations(ctx context.Context) ([]entities.CrmOrganisation, error) {
	var items []crmOrganisationItem
	if err := c.get(ctx, "/organisations", &items); err != nil {
		return nil, fmt.Errorf("failed to fetch crm organisations: %w", err)
	}

	organisations := make([]entities.CrmOrganisation, 0, len(items))
	for _, item := range items {
		organisations = append(organisations, entities.CrmOrganisation{ID: item.ID, Name: item.Name})
	}
	return organisations, nil
}

// FetchDeals retrieves all CRM deal records
func (c *CrmClient) FetchDeals(ctx context.Context) ([]entities.CrmDeal, error) {
	var items []crmDealItem
	if err := c.get(ctx, "/deals", &items); err != nil {
		return nil, fmt.Errorf("failed to fetch crm deals: %w", err)
	}

	deals := make([]entities.CrmDeal, 0, len(items))
	for _, item := range items {
		deal := entities.CrmDeal{
			ID:           item.ID,
			PersonID:     item.PersonID,
			Title:        item.Title,
			Value:        item.Value,
			Stage:        item.Stage,
			Status:       item.Status,
			CustomFields: item.CustomFields,
		}
		if updatedAt, err := time.Parse(time.RFC3339, item.UpdatedAt); err == nil {
			deal.UpdatedAt = updatedAt
		}
		deals = append(deals, deal)
	}
	return deals, nil
}

// get performs an authenticated GET against the CRM API and decodes the body
func (c *CrmClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
