package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	uiview "github.com/blazikenhq/tkx/ui"
)

var (
	selectorHeaderStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	selectorNormalStyle           = lipgloss.NewStyle()
	selectorSelectedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectorDisabledStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectorDisabledSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	secondaryStyle                = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	bannerStyle                   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	warnStyle                     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle                    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	inputStyle                    = lipgloss.NewStyle().Padding(0, 1)
)

func viewStyles() uiview.Styles {
	if !colorOutputEnabled() {
		return uiview.PlainStyles()
	}
	return uiview.Styles{
		Header:           func(s string) string { return selectorHeaderStyle.Render(s) },
		Normal:           func(s string) string { return selectorNormalStyle.Render(s) },
		Selected:         func(s string) string { return selectorSelectedStyle.Render(s) },
		Disabled:         func(s string) string { return selectorDisabledStyle.Render(s) },
		DisabledSelected: func(s string) string { return selectorDisabledSelectedStyle.Render(s) },
		Secondary:        func(s string) string { return secondaryStyle.Render(s) },
	}
}

func colorOutputEnabled() bool {
	if colorDisabledByEnv() {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

func filterBanner(filter *FilterState) string {
	if name, ok := filter.Get(); ok {
		return "filter: " + name
	}
	return "filter: all"
}

func printTickets(tickets []Ticket, filter *FilterState) {
	fmt.Println(filterBanner(filter))
	rows := ticketRows(tickets)
	fmt.Print(uiview.RenderTicketTable(rows, -1, viewStyles()))
}

func printProjects(projects []Project, filter *FilterState) {
	active, _ := filter.Get()
	rows := make([]uiview.ProjectRow, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, uiview.ProjectRow{
			IDLabel: p.ID.String(),
			Name:    p.Name,
			Active:  p.Name == active,
		})
	}
	fmt.Print(uiview.RenderProjectPicker(rows, -1, viewStyles()))
}

func printSummary(summary Summary) {
	if len(summary) == 0 {
		fmt.Println("No tickets.")
		return
	}
	statuses := make([]string, 0, len(summary))
	for status := range summary {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	total := 0
	for _, status := range statuses {
		fmt.Printf("%-16s %d\n", status, summary[status])
		total += summary[status]
	}
	fmt.Printf("%-16s %d\n", "total", total)
}

func printTicketDetail(t Ticket) {
	fmt.Printf("%s  %s\n", t.ID, t.Title)
	fmt.Printf("status: %s", t.Status)
	if t.Priority != "" {
		fmt.Printf("  priority: %s", t.Priority)
	}
	if t.Project != "" {
		fmt.Printf("  project: %s", t.Project)
	}
	fmt.Println()
	if len(t.Assignees) > 0 {
		fmt.Printf("assignees: %s\n", strings.Join(t.Assignees, ", "))
	}
	if len(t.Labels) > 0 {
		fmt.Printf("labels: %s\n", strings.Join(t.Labels, ", "))
	}
	if t.StoryPoints > 0 {
		fmt.Printf("points: %d\n", t.StoryPoints)
	}
	if t.UpdatedAt != "" {
		fmt.Printf("updated: %s\n", formatTimestamp(t.UpdatedAt))
	}
	if strings.TrimSpace(t.Description) != "" {
		fmt.Println()
		fmt.Println(strings.TrimSpace(t.Description))
	}
}

func ticketRows(tickets []Ticket) []uiview.TicketRow {
	rows := make([]uiview.TicketRow, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, uiview.TicketRow{
			IDLabel:       t.ID.String(),
			Title:         t.Title,
			StatusLabel:   t.Status,
			PriorityLabel: t.Priority,
			Project:       t.Project,
			UpdatedLabel:  formatTimestamp(t.UpdatedAt),
			Closed:        ticketClosed(t.Status),
		})
	}
	return rows
}

func ticketClosed(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "done", "closed", "cancelled", "canceled":
		return true
	default:
		return false
	}
}

// formatTimestamp keeps the date portion of an ISO timestamp; anything
// unparsable passes through untouched.
func formatTimestamp(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 10 && value[4] == '-' && value[7] == '-' {
		return value[:10]
	}
	return value
}
