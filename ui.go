package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	uiview "github.com/blazikenhq/tkx/ui"
)

type uiMode int

const (
	modeList uiMode = iota
	modeDetail
	modeSearch
	modeProjects
	modeConfirmStatus
)

const confirmStatusKey = "confirm_status"

type resolutionDoneMsg struct {
	outcome ResolutionOutcome
	fetchID string
}

type ticketsLoadedMsg struct {
	tickets []Ticket
	fetchID string
	err     error
}

type projectsLoadedMsg struct {
	projects []Project
	fetchID  string
	err      error
}

type ticketUpdatedMsg struct {
	ticket Ticket
	err    error
}

type model struct {
	client   *TrackerClient
	resolver *Resolver
	filter   *FilterState
	cfg      Config

	spinner     spinner.Model
	searchInput textinput.Model

	mode    uiMode
	ready   bool
	width   int
	height  int
	loading bool
	fetchID string
	errMsg  string
	warnMsg string

	workspace WorkspaceInfo
	resolved  bool

	tickets   []Ticket
	listIndex int
	search    string

	projects    []Project
	projIndex   int
	projLoading bool

	detail Ticket

	confirmForm   *huh.Form
	confirmResult bool
	confirmTicket Ticket
	confirmNext   string
}

func newBrowserModel(cfg Config, client *TrackerClient, resolver *Resolver, filter *FilterState) model {
	m := model{
		client:   client,
		resolver: resolver,
		filter:   filter,
		cfg:      cfg,
	}
	m.spinner = newSpinner()
	m.searchInput = newSearchInput()
	m.mode = modeList
	m.loading = true
	m.fetchID = newFetchID()
	return m
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return s
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "search title"
	ti.CharLimit = 120
	ti.Width = 40
	return ti
}

func newFetchID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

func (m model) Init() tea.Cmd {
	return tea.Batch(resolveCmd(m.resolver, m.fetchID), m.spinner.Tick)
}

func resolveCmd(resolver *Resolver, fetchID string) tea.Cmd {
	return func() tea.Msg {
		outcome := resolver.Resolve(context.Background())
		return resolutionDoneMsg{outcome: outcome, fetchID: fetchID}
	}
}

func fetchTicketsCmd(client *TrackerClient, query TicketQuery, fetchID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), trackerRequestTimeout)
		defer cancel()
		tickets, err := client.Tickets(ctx, query)
		return ticketsLoadedMsg{tickets: tickets, fetchID: fetchID, err: err}
	}
}

func fetchProjectsCmd(client *TrackerClient, fetchID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), trackerRequestTimeout)
		defer cancel()
		projects, err := client.Projects(ctx)
		return projectsLoadedMsg{projects: projects, fetchID: fetchID, err: err}
	}
}

func updateStatusCmd(client *TrackerClient, id string, status string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), trackerRequestTimeout)
		defer cancel()
		ticket, err := client.UpdateTicket(ctx, id, map[string]string{"status": status})
		return ticketUpdatedMsg{ticket: ticket, err: err}
	}
}

func (m model) activeQuery() TicketQuery {
	q := TicketQuery{}
	if name, ok := m.filter.Get(); ok {
		q.Project = name
	}
	return q
}

func (m *model) reloadTickets() tea.Cmd {
	m.loading = true
	m.errMsg = ""
	m.fetchID = newFetchID()
	return tea.Batch(fetchTicketsCmd(m.client, m.activeQuery(), m.fetchID), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resolutionDoneMsg:
		if msg.fetchID != m.fetchID {
			return m, nil
		}
		m.ready = true
		m.resolved = true
		m.workspace = msg.outcome.Workspace
		m.warnMsg = ""
		if msg.outcome.Status == ResolutionDegraded {
			m.warnMsg = msg.outcome.Reason
		}
		return m, m.reloadTickets()

	case ticketsLoadedMsg:
		if msg.fetchID != m.fetchID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.tickets = msg.tickets
		m.listIndex = clampIndex(m.listIndex, len(m.visibleTickets()))
		return m, nil

	case projectsLoadedMsg:
		if msg.fetchID != m.fetchID {
			return m, nil
		}
		m.projLoading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.mode = modeList
			return m, nil
		}
		m.errMsg = ""
		m.projects = msg.projects
		m.projIndex = clampIndex(m.projIndex, len(m.projects))
		return m, nil

	case ticketUpdatedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		return m, m.reloadTickets()

	case spinner.TickMsg:
		if !m.loading && !m.projLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modeConfirmStatus && m.confirmForm != nil {
		return m.updateConfirmForm(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeDetail:
		return m.handleDetailKey(msg)
	case modeProjects:
		return m.handleProjectsKey(msg)
	case modeConfirmStatus:
		return m.updateConfirmForm(msg)
	}
	return m.handleListKey(msg)
}

func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleTickets()
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.listIndex = clampIndex(m.listIndex-1, len(visible))
		return m, nil
	case "down", "j":
		m.listIndex = clampIndex(m.listIndex+1, len(visible))
		return m, nil
	case "enter":
		if m.listIndex < len(visible) {
			m.detail = visible[m.listIndex]
			m.mode = modeDetail
		}
		return m, nil
	case "/":
		m.mode = modeSearch
		m.searchInput.SetValue(m.search)
		m.searchInput.Focus()
		return m, textinput.Blink
	case "r":
		return m, m.reloadTickets()
	case "a":
		m.resolver.ClearFilter()
		return m, m.reloadTickets()
	case "m":
		m.loading = true
		m.fetchID = newFetchID()
		return m, tea.Batch(resolveCmd(m.resolver, m.fetchID), m.spinner.Tick)
	case "p":
		m.mode = modeProjects
		m.projLoading = true
		m.fetchID = newFetchID()
		return m, tea.Batch(fetchProjectsCmd(m.client, m.fetchID), m.spinner.Tick)
	case "s":
		if m.listIndex < len(visible) {
			ticket := visible[m.listIndex]
			next := nextStatus(ticket.Status)
			m.confirmTicket = ticket
			m.confirmNext = next
			m.confirmResult = false
			m.confirmForm = newStatusConfirmForm(ticket, next, &m.confirmResult)
			m.mode = modeConfirmStatus
			return m, m.confirmForm.Init()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.search = strings.TrimSpace(m.searchInput.Value())
		m.listIndex = 0
		m.mode = modeList
		m.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.search = strings.TrimSpace(m.searchInput.Value())
	m.listIndex = 0
	return m, cmd
}

func (m model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.mode = modeList
	}
	return m, nil
}

func (m model) handleProjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeList
		return m, nil
	case "up", "k":
		m.projIndex = clampIndex(m.projIndex-1, len(m.projects))
		return m, nil
	case "down", "j":
		m.projIndex = clampIndex(m.projIndex+1, len(m.projects))
		return m, nil
	case "a":
		m.resolver.ClearFilter()
		m.mode = modeList
		return m, m.reloadTickets()
	case "enter":
		if m.projIndex < len(m.projects) {
			m.resolver.SelectProject(m.workspace.RepoName, m.projects[m.projIndex])
			m.mode = modeList
			return m, m.reloadTickets()
		}
		return m, nil
	}
	return m, nil
}

func (m model) updateConfirmForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeList
		return m, nil
	}
	form, cmd := m.confirmForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		confirmed := m.confirmForm.GetBool(confirmStatusKey)
		m.confirmForm = nil
		m.mode = modeList
		if confirmed {
			return m, updateStatusCmd(m.client, m.confirmTicket.ID.String(), m.confirmNext)
		}
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.confirmForm = nil
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func newStatusConfirmForm(ticket Ticket, next string, result *bool) *huh.Form {
	confirm := huh.NewConfirm().
		Key(confirmStatusKey).
		Title(fmt.Sprintf("Move %s to %s?", ticket.ID, next)).
		Description(ticket.Title).
		Affirmative("Yes").
		Negative("No").
		Value(result)

	return huh.NewForm(huh.NewGroup(confirm)).
		WithTheme(tkxHuhTheme()).
		WithShowHelp(false)
}

// nextStatus is the default transition offered by the "s" key.
func nextStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "todo", "open", "":
		return "in_progress"
	case "in_progress":
		return "done"
	case "done", "closed":
		return "todo"
	default:
		return "in_progress"
	}
}

func (m model) visibleTickets() []Ticket {
	if m.search == "" {
		return m.tickets
	}
	needle := strings.ToLower(m.search)
	visible := make([]Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.ID.String()), needle) {
			visible = append(visible, t)
		}
	}
	return visible
}

func clampIndex(index int, length int) int {
	if length <= 0 {
		return 0
	}
	if index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(bannerStyle.Render("TKX"))
	b.WriteString("  ")
	b.WriteString(secondaryStyle.Render(m.headerLine()))
	b.WriteString("\n\n")

	switch m.mode {
	case modeDetail:
		b.WriteString(renderDetail(m.detail))
		b.WriteString("\n")
		b.WriteString(secondaryStyle.Render("esc: back"))
		b.WriteString("\n")
	case modeProjects:
		if m.projLoading {
			b.WriteString(m.spinner.View())
			b.WriteString(" Loading projects...\n")
		} else {
			b.WriteString(m.projectPickerView())
			b.WriteString("\n")
			b.WriteString(secondaryStyle.Render("enter: select  a: show all  esc: back"))
			b.WriteString("\n")
		}
	case modeConfirmStatus:
		if m.confirmForm != nil {
			b.WriteString(m.confirmForm.View())
			b.WriteString("\n")
		}
	default:
		if m.mode == modeSearch {
			b.WriteString(inputStyle.Render(m.searchInput.View()))
			b.WriteString("\n")
		}
		if m.loading {
			b.WriteString(m.spinner.View())
			b.WriteString(" Loading tickets...\n")
		} else {
			b.WriteString(uiview.RenderTicketTable(ticketRows(m.visibleTickets()), m.listIndex, viewStyles()))
			b.WriteString("\n")
			b.WriteString(secondaryStyle.Render("enter: detail  s: status  p: project  a: all  m: rematch  /: search  r: refresh  q: quit"))
			b.WriteString("\n")
		}
	}

	if m.warnMsg != "" {
		b.WriteString(warnStyle.Render("warning: " + m.warnMsg))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("error: " + m.errMsg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) headerLine() string {
	parts := []string{filterBanner(m.filter)}
	if m.workspace.RepoName != "" {
		repo := m.workspace.RepoName
		if m.workspace.Branch != "" {
			repo += "@" + m.workspace.Branch
		}
		parts = append(parts, "repo: "+repo)
	}
	return strings.Join(parts, "  ")
}

func (m model) projectPickerView() string {
	active, _ := m.filter.Get()
	rows := make([]uiview.ProjectRow, 0, len(m.projects))
	for _, p := range m.projects {
		rows = append(rows, uiview.ProjectRow{
			IDLabel: p.ID.String(),
			Name:    p.Name,
			Active:  p.Name == active,
		})
	}
	return uiview.RenderProjectPicker(rows, m.projIndex, viewStyles())
}

func renderDetail(t Ticket) string {
	var b strings.Builder
	b.WriteString(selectorHeaderStyle.Render(fmt.Sprintf("%s  %s", t.ID, t.Title)))
	b.WriteString("\n")
	line := "status: " + t.Status
	if t.Priority != "" {
		line += "  priority: " + t.Priority
	}
	if t.Project != "" {
		line += "  project: " + t.Project
	}
	b.WriteString(line)
	b.WriteString("\n")
	if len(t.Assignees) > 0 {
		b.WriteString("assignees: " + strings.Join(t.Assignees, ", "))
		b.WriteString("\n")
	}
	if len(t.Labels) > 0 {
		b.WriteString("labels: " + strings.Join(t.Labels, ", "))
		b.WriteString("\n")
	}
	if t.UpdatedAt != "" {
		b.WriteString("updated: " + formatTimestamp(t.UpdatedAt))
		b.WriteString("\n")
	}
	if strings.TrimSpace(t.Description) != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(t.Description))
		b.WriteString("\n")
	}
	return b.String()
}
