// Package ado provides a client for the Azure DevOps work item tracking REST
// API and a syncer that mirrors change-management tickets into a Store.
package ado

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

// ErrUnauthorized is returned when the tracker rejects the access token.
var ErrUnauthorized = errors.New("azure devops rejected the access token")

const (
	apiVersion         = "7.1"
	commentsAPIVersion = "7.1-preview.4"
	batchSize          = 200
)

// DetailFields lists the work item fields requested for every ticket.
var DetailFields = []string{
	"System.Id", "System.Title", "System.State", "System.CreatedDate",
	"System.AssignedTo", "System.AreaPath", "Microsoft.VSTS.Common.Priority",
	"Microsoft.VSTS.Common.ClosedDate", "Microsoft.VSTS.Common.StateChangeDate",
	"Custom.FeatureDescription", "Custom.State1", "Custom.Category",
	"Custom.RequesterName", "Custom.RequesterTeam", "Custom.EndDate",
	"Custom.Reactivated", "Custom.GeneratedbyIntakeForm",
	"Microsoft.VSTS.Scheduling.StartDate",
}

// Config holds Azure DevOps connection settings.
type Config struct {
	Org      string // organisation, e.g. contoso
	Project  string // team project name
	PAT      string // personal access token
	Area     string // area path under the project, defaults to "Change Management"
	DaysBack int    // creation window in days, defaults to 365
	BaseURL  string // overrides https://{Org}.visualstudio.com
}

// Client is an Azure DevOps REST API client. Requests are retried on 429
// and 5xx responses.
type Client struct {
	baseURL  string
	project  string
	pat      string
	area     string
	daysBack int
	http     *retryablehttp.Client
}

// New creates a new Azure DevOps client.
func New(cfg Config, logger *slog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.visualstudio.com", cfg.Org)
	}
	area := cfg.Area
	if area == "" {
		area = "Change Management"
	}
	days := cfg.DaysBack
	if days <= 0 {
		days = 365
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = time.Second
	rc.RetryWaitMax = 8 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil
	if logger != nil {
		rc.Logger = logger
	}

	return &Client{
		baseURL:  strings.TrimRight(base, "/"),
		project:  cfg.Project,
		pat:      cfg.PAT,
		area:     area,
		daysBack: days,
		http:     rc,
	}
}

// WorkItem is a work item as returned by the REST API. Field values keep
// their JSON types and are coerced by ParseWorkItem.
type WorkItem struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Comment is a discussion comment on a work item.
type Comment struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type wiqlResponse struct {
	WorkItems []struct {
		ID int `json:"id"`
	} `json:"workItems"`
}

type workItemsResponse struct {
	Count int        `json:"count"`
	Value []WorkItem `json:"value"`
}

type commentsResponse struct {
	TotalCount int       `json:"totalCount"`
	Comments   []Comment `json:"comments"`
}

// ProjectURL returns the browser link of the project.
func (c *Client) ProjectURL() string {
	return c.baseURL + "/" + url.PathEscape(c.project)
}

// WorkItemURL returns the browser link for a work item.
func (c *Client) WorkItemURL(id int) string {
	return fmt.Sprintf("%s/%s/_workitems/edit/%d", c.baseURL, url.PathEscape(c.project), id)
}

// Query returns the WIQL selecting change-management backlog items created
// within the configured window, newest first.
func (c *Client) Query() string {
	return fmt.Sprintf(`SELECT [System.Id]
FROM WorkItems
WHERE [System.TeamProject] = '%s'
  AND [System.WorkItemType] = 'Product Backlog Item'
  AND [System.AreaPath] UNDER '%s\%s'
  AND [System.CreatedDate] >= @Today - %d
ORDER BY [System.CreatedDate] DESC`,
		escapeWIQL(c.project), escapeWIQL(c.project), escapeWIQL(c.area), c.daysBack)
}

func escapeWIQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// QueryIDs runs the change-management WIQL query and returns matching IDs.
func (c *Client) QueryIDs(ctx context.Context) ([]int, error) {
	reqURL := fmt.Sprintf("%s/%s/_apis/wit/wiql?api-version=%s", c.baseURL, url.PathEscape(c.project), apiVersion)
	body, err := c.do(ctx, http.MethodPost, reqURL, map[string]string{"query": c.Query()})
	if err != nil {
		return nil, fmt.Errorf("query work items: %w", err)
	}

	var resp wiqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode wiql response: %w", err)
	}
	ids := make([]int, 0, len(resp.WorkItems))
	for _, w := range resp.WorkItems {
		ids = append(ids, w.ID)
	}
	return ids, nil
}

// GetWorkItems fetches the detail fields of ids in batches of 200.
func (c *Client) GetWorkItems(ctx context.Context, ids []int) ([]WorkItem, error) {
	var items []WorkItem
	for start := 0; start < len(ids); start += batchSize {
		batch := ids[start:min(start+batchSize, len(ids))]
		parts := make([]string, len(batch))
		for i, id := range batch {
			parts[i] = strconv.Itoa(id)
		}

		params := url.Values{
			"ids":         {strings.Join(parts, ",")},
			"fields":      {strings.Join(DetailFields, ",")},
			"api-version": {apiVersion},
		}
		reqURL := fmt.Sprintf("%s/_apis/wit/workitems?%s", c.baseURL, params.Encode())
		body, err := c.do(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("get work items: %w", err)
		}

		var resp workItemsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode work items: %w", err)
		}
		items = append(items, resp.Value...)
	}
	return items, nil
}

// FetchTickets queries, fetches and parses every change-management ticket.
// Items without a usable creation date are skipped.
func (c *Client) FetchTickets(ctx context.Context) ([]model.Ticket, error) {
	ids, err := c.QueryIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := c.GetWorkItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	tickets := make([]model.Ticket, 0, len(items))
	for _, item := range items {
		t, ok := ParseWorkItem(item)
		if !ok {
			continue
		}
		t.Link = c.WorkItemURL(t.ID)
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// ListComments returns the discussion comments of a work item.
func (c *Client) ListComments(ctx context.Context, id int) ([]Comment, error) {
	reqURL := fmt.Sprintf("%s/%s/_apis/wit/workitems/%d/comments?api-version=%s",
		c.baseURL, url.PathEscape(c.project), id, commentsAPIVersion)
	body, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("list comments on %d: %w", id, err)
	}

	var resp commentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return resp.Comments, nil
}

// AddComment posts an HTML comment on a work item.
func (c *Client) AddComment(ctx context.Context, id int, text string) error {
	reqURL := fmt.Sprintf("%s/%s/_apis/wit/workitems/%d/comments?api-version=%s",
		c.baseURL, url.PathEscape(c.project), id, commentsAPIVersion)
	if _, err := c.do(ctx, http.MethodPost, reqURL, map[string]string{"text": text}); err != nil {
		return fmt.Errorf("add comment on %d: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, reqURL string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth("", c.pat)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return nil, fmt.Errorf("azure devops API returned %d: %s", resp.StatusCode, string(body[:min(len(body), 200)]))
	}
	return body, nil
}
