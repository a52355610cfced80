package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *TrackerClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewTrackerClient(Config{
		TrackerURL:   srv.URL,
		TrackerToken: "test-token",
		UserID:       "U123",
	}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewTrackerClient_RequiresURL(t *testing.T) {
	_, err := NewTrackerClient(Config{}, nil)
	if !errors.Is(err, errNotConfigured) {
		t.Fatalf("expected errNotConfigured, got %v", err)
	}
}

func TestProjects_WrappedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/projects/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		_, _ = w.Write([]byte(`{"projects": [{"id": 1, "name": "Payments"}, {"id": "p-2", "name": "Billing"}]}`))
	}))

	projects, err := client.Projects(context.Background())
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].ID != "1" || projects[0].Name != "Payments" {
		t.Fatalf("unexpected first project %+v", projects[0])
	}
	if projects[1].ID != "p-2" {
		t.Fatalf("expected string id preserved, got %q", projects[1].ID)
	}
}

func TestProjects_BareArrayBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 7, "name": "Auth"}]`))
	}))

	projects, err := client.Projects(context.Background())
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Auth" {
		t.Fatalf("unexpected projects %+v", projects)
	}
}

func TestTickets_QueryParams(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tickets/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("status") != "todo" || q.Get("priority") != "high" || q.Get("project") != "Payments" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"tickets": [{"id": 1, "title": "Fix login", "status": "todo", "project": "Payments"}]}`))
	}))

	tickets, err := client.Tickets(context.Background(), TicketQuery{
		Status:   "todo",
		Priority: "high",
		Project:  "Payments",
	})
	if err != nil {
		t.Fatalf("tickets: %v", err)
	}
	if len(tickets) != 1 || tickets[0].Title != "Fix login" {
		t.Fatalf("unexpected tickets %+v", tickets)
	}
}

func TestTickets_MineUsesMyTicketsPath(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/my-tickets/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "U123" {
			t.Errorf("unexpected user_id %q", got)
		}
		_, _ = w.Write([]byte(`{"tickets": []}`))
	}))

	if _, err := client.Tickets(context.Background(), TicketQuery{Mine: true}); err != nil {
		t.Fatalf("tickets: %v", err)
	}
}

func TestTickets_MineWithoutUserIDFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	client, err := NewTrackerClient(Config{TrackerURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Tickets(context.Background(), TicketQuery{Mine: true}); err == nil {
		t.Fatal("expected error without user_id")
	}
}

func TestTickets_ClientSideProjectBackstop(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Server ignores the project param and returns everything.
		_, _ = w.Write([]byte(`{"tickets": [
			{"id": 1, "title": "A", "status": "todo", "project": "Payments"},
			{"id": 2, "title": "B", "status": "todo", "project": "Billing"}
		]}`))
	}))

	tickets, err := client.Tickets(context.Background(), TicketQuery{Project: "payments"})
	if err != nil {
		t.Fatalf("tickets: %v", err)
	}
	if len(tickets) != 1 || tickets[0].Title != "A" {
		t.Fatalf("expected only Payments tickets, got %+v", tickets)
	}
}

func TestTicket_WrappedAndBare(t *testing.T) {
	bodies := map[string]string{
		"/api/tickets/1/":    `{"ticket": {"id": 1, "title": "Wrapped", "status": "todo"}}`,
		"/api/tickets/BZ-2/": `{"id": "BZ-2", "title": "Bare", "status": "done"}`,
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))

	ticket, err := client.Ticket(context.Background(), "1")
	if err != nil {
		t.Fatalf("ticket: %v", err)
	}
	if ticket.Title != "Wrapped" {
		t.Fatalf("unexpected ticket %+v", ticket)
	}

	ticket, err = client.Ticket(context.Background(), "BZ-2")
	if err != nil {
		t.Fatalf("ticket: %v", err)
	}
	if ticket.Title != "Bare" || ticket.ID != "BZ-2" {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
}

func TestCreateTicket_PostsDraftWithUserID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %q", r.Method)
		}
		var draft TicketDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			t.Errorf("decode draft: %v", err)
		}
		if draft.Title != "New ticket" || draft.UserID != "U123" {
			t.Errorf("unexpected draft %+v", draft)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ticket": {"id": 10, "title": "New ticket", "status": "todo"}}`))
	}))

	ticket, err := client.CreateTicket(context.Background(), TicketDraft{Title: "New ticket"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.ID != "10" {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
}

func TestCreateTicket_RequiresTitle(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	if _, err := client.CreateTicket(context.Background(), TicketDraft{}); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestUpdateTicket_PutsFieldsWithUserID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %q", r.Method)
		}
		if r.URL.Path != "/api/tickets/7/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["status"] != "done" || payload["user_id"] != "U123" {
			t.Errorf("unexpected payload %v", payload)
		}
		_, _ = w.Write([]byte(`{"ticket": {"id": 7, "title": "T", "status": "done"}}`))
	}))

	ticket, err := client.UpdateTicket(context.Background(), "7", map[string]string{"status": "done"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ticket.Status != "done" {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
}

func TestTicketsByDate_SendsParamAndBackstops(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tickets/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("date"); got != "2026-08-30" {
			t.Errorf("expected date param, got %q", got)
		}
		// Server ignores the date param and returns everything.
		_, _ = w.Write([]byte(`{"tickets": [
			{"id": 1, "title": "Updated that day", "status": "todo", "updated_at": "2026-08-30T09:00:00Z"},
			{"id": 2, "title": "Created that day", "status": "todo", "created_at": "2026-08-30T11:30:00Z"},
			{"id": 3, "title": "Old", "status": "todo", "updated_at": "2026-08-01T08:00:00Z"}
		]}`))
	}))

	tickets, err := client.TicketsByDate(context.Background(), "2026-08-30")
	if err != nil {
		t.Fatalf("tickets by date: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets touched that day, got %d", len(tickets))
	}
	if tickets[0].Title != "Updated that day" || tickets[1].Title != "Created that day" {
		t.Fatalf("unexpected tickets %+v", tickets)
	}
}

func TestTicketsByDate_NoLocalMatchKeepsServerAnswer(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tickets": [
			{"id": 1, "title": "Stampless", "status": "todo"}
		]}`))
	}))

	tickets, err := client.TicketsByDate(context.Background(), "2026-08-30")
	if err != nil {
		t.Fatalf("tickets by date: %v", err)
	}
	if len(tickets) != 1 || tickets[0].Title != "Stampless" {
		t.Fatalf("expected server answer kept when no timestamps match, got %+v", tickets)
	}
}

func TestTicketsByDate_RequiresDate(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	if _, err := client.TicketsByDate(context.Background(), "  "); err == nil {
		t.Fatal("expected error for missing date")
	}
}

func TestSummary(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tickets/summary/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"todo": 3, "in_progress": 1, "done": 12}`))
	}))

	summary, err := client.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary["todo"] != 3 || summary["done"] != 12 {
		t.Fatalf("unexpected summary %v", summary)
	}
}

func TestStaleTickets_DefaultsDays(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("days"); got != "3" {
			t.Errorf("expected default days=3, got %q", got)
		}
		_, _ = w.Write([]byte(`{"tickets": []}`))
	}))

	if _, err := client.StaleTickets(context.Background(), 0); err != nil {
		t.Fatalf("stale: %v", err)
	}
}

func TestDo_NonOKStatusReturnsAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "bad token"}`))
	}))

	_, err := client.Projects(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", apiErr.StatusCode)
	}
	if apiErr.Detail == "" {
		t.Fatal("expected error detail")
	}
}

func TestTrimmedDetail_CapsLength(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	got := trimmedDetail(long)
	if len(got) != 403 {
		t.Fatalf("expected 400 chars plus ellipsis, got %d", len(got))
	}
}

func TestAIMatch_PostsRepoAndCandidates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ai/match-project/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var payload struct {
			Repo     string   `json:"repo"`
			Projects []string `json:"projects"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Repo != "payments-service" || len(payload.Projects) != 2 {
			t.Errorf("unexpected payload %+v", payload)
		}
		_, _ = w.Write([]byte(`The match is {"project": "Payments"} based on the name.`))
	}))

	got, err := client.AIMatch(context.Background(), "payments-service", []string{"Payments", "Billing"})
	if err != nil {
		t.Fatalf("ai match: %v", err)
	}
	if got != "Payments" {
		t.Fatalf("expected %q, got %q", "Payments", got)
	}
}

func TestAIMatch_EmptyInputsSkipRequest(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("expected no request")
	}))

	if got, err := client.AIMatch(context.Background(), "", []string{"Payments"}); err != nil || got != "" {
		t.Fatalf("expected empty result, got %q (%v)", got, err)
	}
	if got, err := client.AIMatch(context.Background(), "repo", nil); err != nil || got != "" {
		t.Fatalf("expected empty result, got %q (%v)", got, err)
	}
}
