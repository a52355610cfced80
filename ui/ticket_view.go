package ui

import "strings"

type TicketRow struct {
	IDLabel       string
	Title         string
	StatusLabel   string
	PriorityLabel string
	Project       string
	UpdatedLabel  string
	Closed        bool
}

func RenderTicketTable(rows []TicketRow, cursor int, styles Styles) string {
	const (
		idWidth       = 10
		titleWidth    = 52
		statusWidth   = 14
		priorityWidth = 10
		projectWidth  = 20
		updatedWidth  = 12
	)
	var b strings.Builder
	header := formatTicketLine("ID", "Title", "Status", "Priority", "Project", "Updated", idWidth, titleWidth, statusWidth, priorityWidth, projectWidth, updatedWidth)
	b.WriteString(styles.Header("  " + header))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString("  ")
		b.WriteString(styles.Disabled("No tickets."))
		b.WriteString("\n")
		return b.String()
	}
	for i, row := range rows {
		rowStyle := styles.Normal
		rowSelectedStyle := styles.Selected
		if row.Closed {
			rowStyle = styles.Disabled
			rowSelectedStyle = styles.DisabledSelected
		}
		line := formatTicketLine(
			row.IDLabel,
			row.Title,
			row.StatusLabel,
			row.PriorityLabel,
			row.Project,
			row.UpdatedLabel,
			idWidth,
			titleWidth,
			statusWidth,
			priorityWidth,
			projectWidth,
			updatedWidth,
		)
		if i == cursor {
			b.WriteString("> " + rowSelectedStyle(line))
		} else {
			b.WriteString("  " + rowStyle(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatTicketLine(id string, title string, status string, priority string, project string, updated string, idWidth int, titleWidth int, statusWidth int, priorityWidth int, projectWidth int, updatedWidth int) string {
	return PadOrTrim(id, idWidth) + " " +
		PadOrTrim(title, titleWidth) + " " +
		PadOrTrim(status, statusWidth) + " " +
		PadOrTrim(priority, priorityWidth) + " " +
		PadOrTrim(project, projectWidth) + " " +
		PadOrTrim(updated, updatedWidth)
}
