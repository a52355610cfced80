package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const trackerRequestTimeout = 10 * time.Second

// APIError is returned when the tracker responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker API error %d: %s", e.StatusCode, e.Detail)
}

// TrackerClient talks to the tracker REST API. The zero http.Client
// argument gets a 10s timeout; tests pass an httptest server URL and
// client directly.
type TrackerClient struct {
	baseURL string
	token   string
	userID  string
	client  *http.Client
}

func NewTrackerClient(cfg Config, client *http.Client) (*TrackerClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.TrackerURL), "/")
	if base == "" {
		return nil, errNotConfigured
	}
	if client == nil {
		client = &http.Client{Timeout: trackerRequestTimeout}
	}
	return &TrackerClient{
		baseURL: base,
		token:   strings.TrimSpace(cfg.TrackerToken),
		userID:  strings.TrimSpace(cfg.UserID),
		client:  client,
	}, nil
}

// TicketQuery narrows a ticket listing. Empty fields are omitted from the
// request. Mine scopes the listing to the configured user.
type TicketQuery struct {
	Status   string
	Priority string
	Project  string
	Mine     bool
}

// TicketDraft carries the fields for creating a ticket. Title is required.
type TicketDraft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Project     string `json:"project,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

func (c *TrackerClient) Projects(ctx context.Context) ([]Project, error) {
	data, err := c.get(ctx, "/api/projects/", nil)
	if err != nil {
		return nil, err
	}
	return decodeProjectList(data)
}

func (c *TrackerClient) Tickets(ctx context.Context, q TicketQuery) ([]Ticket, error) {
	path := "/api/tickets/"
	params := url.Values{}
	if q.Mine {
		if c.userID == "" {
			return nil, errors.New("user_id not configured; set it via tkx init")
		}
		path = "/api/my-tickets/"
		params.Set("user_id", c.userID)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Priority != "" {
		params.Set("priority", q.Priority)
	}
	if q.Project != "" {
		params.Set("project", q.Project)
	}
	data, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	tickets, err := decodeTicketList(data)
	if err != nil {
		return nil, err
	}
	return filterTicketsByProject(tickets, q.Project), nil
}

func (c *TrackerClient) Ticket(ctx context.Context, id string) (Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ticket{}, errors.New("ticket id required")
	}
	data, err := c.get(ctx, "/api/tickets/"+url.PathEscape(id)+"/", nil)
	if err != nil {
		return Ticket{}, err
	}
	return decodeTicket(data)
}

func (c *TrackerClient) CreateTicket(ctx context.Context, draft TicketDraft) (Ticket, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return Ticket{}, errors.New("ticket title required")
	}
	if draft.UserID == "" {
		draft.UserID = c.userID
	}
	data, err := c.send(ctx, http.MethodPost, "/api/tickets/", draft)
	if err != nil {
		return Ticket{}, err
	}
	return decodeTicket(data)
}

func (c *TrackerClient) UpdateTicket(ctx context.Context, id string, fields map[string]string) (Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ticket{}, errors.New("ticket id required")
	}
	if len(fields) == 0 {
		return Ticket{}, errors.New("no fields to update")
	}
	payload := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	if c.userID != "" {
		payload["user_id"] = c.userID
	}
	data, err := c.send(ctx, http.MethodPut, "/api/tickets/"+url.PathEscape(id)+"/", payload)
	if err != nil {
		return Ticket{}, err
	}
	return decodeTicket(data)
}

// TicketsByDate lists tickets touched on an ISO date (e.g. 2026-08-30).
func (c *TrackerClient) TicketsByDate(ctx context.Context, date string) ([]Ticket, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, errors.New("date required (e.g. 2026-08-30)")
	}
	params := url.Values{}
	params.Set("date", date)
	data, err := c.get(ctx, "/api/tickets/", params)
	if err != nil {
		return nil, err
	}
	tickets, err := decodeTicketList(data)
	if err != nil {
		return nil, err
	}
	return filterTicketsByDate(tickets, date), nil
}

func (c *TrackerClient) Summary(ctx context.Context) (Summary, error) {
	params := url.Values{}
	if c.userID != "" {
		params.Set("user_id", c.userID)
	}
	data, err := c.get(ctx, "/api/tickets/summary/", params)
	if err != nil {
		return nil, err
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return summary, nil
}

func (c *TrackerClient) StaleTickets(ctx context.Context, days int) ([]Ticket, error) {
	if days <= 0 {
		days = 3
	}
	params := url.Values{}
	params.Set("days", fmt.Sprintf("%d", days))
	data, err := c.get(ctx, "/api/tickets/stale/", params)
	if err != nil {
		return nil, err
	}
	return decodeTicketList(data)
}

func (c *TrackerClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req, http.StatusOK)
}

func (c *TrackerClient) send(ctx context.Context, method string, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, http.StatusOK, http.StatusCreated)
}

func (c *TrackerClient) do(req *http.Request, acceptStatus ...int) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tkx/"+currentVersion())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracker request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	for _, status := range acceptStatus {
		if resp.StatusCode == status {
			return data, nil
		}
	}
	return nil, &APIError{StatusCode: resp.StatusCode, Detail: trimmedDetail(data)}
}

func trimmedDetail(body []byte) string {
	detail := strings.TrimSpace(string(body))
	const maxLen = 400
	if len(detail) > maxLen {
		detail = detail[:maxLen] + "..."
	}
	return detail
}

// The tracker wraps list and detail payloads ({"tickets": ...},
// {"ticket": ...}) but older deployments return bare values; accept both.

func decodeProjectList(data []byte) ([]Project, error) {
	var wrapped struct {
		Projects []Project `json:"projects"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Projects != nil {
		return wrapped.Projects, nil
	}
	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return projects, nil
}

func decodeTicketList(data []byte) ([]Ticket, error) {
	var wrapped struct {
		Tickets []Ticket `json:"tickets"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Tickets != nil {
		return wrapped.Tickets, nil
	}
	var tickets []Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return tickets, nil
}

func decodeTicket(data []byte) (Ticket, error) {
	var wrapped struct {
		Ticket *Ticket `json:"ticket"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Ticket != nil {
		return *wrapped.Ticket, nil
	}
	var ticket Ticket
	if err := json.Unmarshal(data, &ticket); err != nil {
		return Ticket{}, fmt.Errorf("decode ticket: %w", err)
	}
	return ticket, nil
}

// filterTicketsByDate is a client-side backstop for servers that ignore the
// date query param. When no ticket carries the date at all, the server's
// answer stands as-is.
func filterTicketsByDate(tickets []Ticket, date string) []Ticket {
	filtered := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		if strings.HasPrefix(t.UpdatedAt, date) || strings.HasPrefix(t.CreatedAt, date) {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return tickets
	}
	return filtered
}

// filterTicketsByProject is a client-side backstop for servers that ignore
// the project query param.
func filterTicketsByProject(tickets []Ticket, project string) []Ticket {
	project = strings.TrimSpace(project)
	if project == "" {
		return tickets
	}
	filtered := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		if strings.EqualFold(strings.TrimSpace(t.Project), project) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
