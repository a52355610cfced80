package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexID accepts tracker identifiers that arrive as JSON numbers ("42")
// or strings ("BZ-42") and normalizes both to a string.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", trimmed, err)
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string {
	return string(id)
}

type Project struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
}

type Ticket struct {
	ID          FlexID   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority,omitempty"`
	Project     string   `json:"project,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	StoryPoints int      `json:"story_points,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// Summary maps a ticket status to the number of tickets in that status.
type Summary map[string]int

// WorkspaceInfo is the best-effort identity of the current working
// directory. Fields are empty rather than absent; RepoName falls back to
// FolderName when no version-control data is available.
type WorkspaceInfo struct {
	RepoName   string
	Branch     string
	FolderName string
}
