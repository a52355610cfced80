package main

import "strings"

const (
	tierExact     = "exact"
	tierPrefix    = "prefix"
	tierSubstring = "substring"
	tierCache     = "cache"
	tierAI        = "ai"
)

// matchTier is one priority level of the name-matching heuristic. Tiers
// are evaluated in order and the first tier with any match wins, even if a
// later tier would pair a different project.
type matchTier struct {
	name  string
	match func(repoName string, projectName string) bool
}

var matchTiers = []matchTier{
	{tierExact, func(repo string, project string) bool {
		return repo == project
	}},
	{tierPrefix, func(repo string, project string) bool {
		return strings.HasPrefix(repo, project) || strings.HasPrefix(project, repo)
	}},
	{tierSubstring, func(repo string, project string) bool {
		return strings.Contains(repo, project) || strings.Contains(project, repo)
	}},
}

// matchProject selects at most one project for repoName using the string
// tiers. Returns nil when repoName is empty, projects is empty, or nothing
// matches. Never errors.
func matchProject(repoName string, projects []Project) *Project {
	project, _ := matchProjectTiered(repoName, projects)
	return project
}

// matchProjectTiered additionally reports which tier produced the match.
// Comparison is case-insensitive and on the project name only; within a
// tier the first matching project in list order wins.
func matchProjectTiered(repoName string, projects []Project) (*Project, string) {
	repo := strings.ToLower(strings.TrimSpace(repoName))
	if repo == "" || len(projects) == 0 {
		return nil, ""
	}
	for _, tier := range matchTiers {
		for i := range projects {
			name := strings.ToLower(strings.TrimSpace(projects[i].Name))
			if name == "" {
				continue
			}
			if tier.match(repo, name) {
				return &projects[i], tier.name
			}
		}
	}
	return nil, ""
}
