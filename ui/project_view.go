package ui

import "strings"

type ProjectRow struct {
	IDLabel string
	Name    string
	Active  bool
}

// RenderProjectPicker lists projects with the active filter marked.
// cursor < 0 renders without a selection (non-interactive listing).
func RenderProjectPicker(rows []ProjectRow, cursor int, styles Styles) string {
	const (
		idWidth   = 8
		nameWidth = 48
	)
	var b strings.Builder
	header := PadOrTrim("ID", idWidth) + " " + PadOrTrim("Project", nameWidth)
	b.WriteString(styles.Header("  " + header))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString("  ")
		b.WriteString(styles.Disabled("No projects."))
		b.WriteString("\n")
		return b.String()
	}
	for i, row := range rows {
		marker := " "
		if row.Active {
			marker = "*"
		}
		line := PadOrTrim(row.IDLabel, idWidth) + " " + PadOrTrim(row.Name, nameWidth) + " " + marker
		if i == cursor {
			b.WriteString("> " + styles.Selected(line))
		} else {
			b.WriteString("  " + styles.Normal(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
