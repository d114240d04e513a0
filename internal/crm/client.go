// Package crm fetches deals and their associated stakeholders from the CRM
// REST API and maps them onto domain types. All list calls follow cursor
// paging to completion.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ignite/dealthread-monitor/internal/config"
	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/pkg/httpretry"
	"github.com/ignite/dealthread-monitor/internal/service/monitor"
)

// Client is a CRM API client
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new CRM API client
func NewClient(cfg config.CRMConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		pageSize: cfg.PageSize,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// doRequest makes an HTTP request to the CRM API
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, monitor.ErrDealNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// ListDeals fetches all deals, following paging. When stages is non-empty,
// deals outside those stages are filtered out after the fetch.
func (c *Client) ListDeals(ctx context.Context, stages []string) ([]domain.Deal, error) {
	wanted := make(map[string]bool, len(stages))
	for _, s := range stages {
		wanted[strings.ToLower(s)] = true
	}

	var deals []domain.Deal
	after := ""
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(c.pageSize))
		params.Set("properties", strings.Join(dealProperties, ","))
		if after != "" {
			params.Set("after", after)
		}

		body, err := c.doRequest(ctx, http.MethodGet, "/crm/v3/objects/deals", params, nil)
		if err != nil {
			return nil, fmt.Errorf("listing deals: %w", err)
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing deals response: %w", err)
		}

		for _, obj := range page.Results {
			deal := obj.toDeal()
			if len(wanted) > 0 && !wanted[deal.Stage] {
				continue
			}
			deals = append(deals, deal)
		}

		if page.Paging == nil || page.Paging.Next == nil || page.Paging.Next.After == "" {
			break
		}
		after = page.Paging.Next.After
	}
	return deals, nil
}

// GetDeal fetches a single deal by id.
func (c *Client) GetDeal(ctx context.Context, dealID string) (domain.Deal, error) {
	params := url.Values{}
	params.Set("properties", strings.Join(dealProperties, ","))

	body, err := c.doRequest(ctx, http.MethodGet, "/crm/v3/objects/deals/"+url.PathEscape(dealID), params, nil)
	if err != nil {
		return domain.Deal{}, fmt.Errorf("fetching deal %s: %w", dealID, err)
	}

	var obj object
	if err := json.Unmarshal(body, &obj); err != nil {
		return domain.Deal{}, fmt.Errorf("parsing deal response: %w", err)
	}
	return obj.toDeal(), nil
}

// DealContacts fetches the stakeholders associated with a deal: the
// association listing gives contact ids, a batch read fills in properties.
// A deal with no associations returns an empty slice, not an error.
func (c *Client) DealContacts(ctx context.Context, dealID string) ([]domain.Contact, error) {
	body, err := c.doRequest(ctx, http.MethodGet,
		"/crm/v4/objects/deals/"+url.PathEscape(dealID)+"/associations/contacts", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing deal %s contacts: %w", dealID, err)
	}

	var assoc associationsResponse
	if err := json.Unmarshal(body, &assoc); err != nil {
		return nil, fmt.Errorf("parsing associations response: %w", err)
	}
	if len(assoc.Results) == 0 {
		return []domain.Contact{}, nil
	}

	req := batchReadRequest{Properties: contactProperties}
	for _, r := range assoc.Results {
		req.Inputs = append(req.Inputs, batchRef{ID: strconv.FormatInt(r.ToObjectID, 10)})
	}

	body, err = c.doRequest(ctx, http.MethodPost, "/crm/v3/objects/contacts/batch/read", nil, req)
	if err != nil {
		return nil, fmt.Errorf("reading deal %s contacts: %w", dealID, err)
	}

	var batch listResponse
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("parsing contacts response: %w", err)
	}

	contacts := make([]domain.Contact, 0, len(batch.Results))
	for _, obj := range batch.Results {
		contacts = append(contacts, obj.toContact())
	}
	return contacts, nil
}
