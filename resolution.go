package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

type ResolutionStatus int

const (
	ResolutionMatched ResolutionStatus = iota
	ResolutionNoMatch
	ResolutionDegraded
)

// ResolutionOutcome reports how one resolution attempt ended. A degraded
// attempt names its reason instead of silently looking like "no match".
type ResolutionOutcome struct {
	Status    ResolutionStatus
	Project   *Project
	Tier      string
	Reason    string
	Workspace WorkspaceInfo
}

// projectService is the slice of the tracker client the resolver needs.
type projectService interface {
	Projects(ctx context.Context) ([]Project, error)
	AIMatch(ctx context.Context, repoName string, candidates []string) (string, error)
}

// detectWorkspaceFn is swapped in tests.
var detectWorkspaceFn = DetectWorkspace

// Resolver turns "process started in some directory" into an active
// project filter when one can be confidently determined. Matching is
// best-effort: every failure degrades and leaves the filter at its prior
// value rather than surfacing an error.
type Resolver struct {
	svc       projectService
	filter    *FilterState
	aiEnabled bool

	mu      sync.Mutex
	attempt uint64
}

func NewResolver(svc projectService, filter *FilterState, aiEnabled bool) *Resolver {
	return &Resolver{svc: svc, filter: filter, aiEnabled: aiEnabled}
}

// Resolve runs the full cascade: workspace detection, project fetch,
// string tiers, match cache, then the AI tier. Only the newest in-flight
// attempt may mutate the filter, so a slow resolution that finishes after
// a fresher one cannot overwrite it.
func (r *Resolver) Resolve(ctx context.Context) ResolutionOutcome {
	attempt := r.beginAttempt()

	ws := detectWorkspaceFn(ctx)
	outcome := ResolutionOutcome{Status: ResolutionNoMatch, Workspace: ws}

	repoName := strings.TrimSpace(ws.RepoName)
	if repoName == "" {
		return outcome
	}

	projects, err := r.svc.Projects(ctx)
	if err != nil {
		warnf("project fetch failed: %v", err)
		outcome.Status = ResolutionDegraded
		outcome.Reason = fmt.Sprintf("project fetch failed: %v", err)
		return outcome
	}
	if len(projects) == 0 {
		return outcome
	}

	project, tier := matchProjectTiered(repoName, projects)
	if project == nil {
		if cached := cachedProject(repoName, projects); cached != nil {
			project, tier = cached, tierCache
		}
	}
	if project == nil && r.aiEnabled {
		project, tier = r.aiTier(ctx, repoName, projects, &outcome)
	}
	if project == nil {
		return outcome
	}

	outcome.Status = ResolutionMatched
	outcome.Project = project
	outcome.Tier = tier
	if r.isCurrent(attempt) {
		r.filter.Set(project.Name)
		if err := writeMatchCache(repoName, project.Name); err != nil {
			warnf("failed to update match cache: %v", err)
		}
	}
	return outcome
}

func (r *Resolver) aiTier(ctx context.Context, repoName string, projects []Project, outcome *ResolutionOutcome) (*Project, string) {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	matched, err := r.svc.AIMatch(ctx, repoName, names)
	if err != nil {
		warnf("AI match failed: %v", err)
		outcome.Status = ResolutionDegraded
		outcome.Reason = fmt.Sprintf("AI match failed: %v", err)
		return nil, ""
	}
	if matched == "" {
		return nil, ""
	}
	// The collaborator echoes canonical names, so resolve case-sensitively;
	// anything else is a phantom and must not become the filter.
	for i := range projects {
		if projects[i].Name == matched {
			return &projects[i], tierAI
		}
	}
	warnf("AI match returned unknown project %q", matched)
	return nil, ""
}

// SelectProject applies a manual pick, bypassing matching entirely.
func (r *Resolver) SelectProject(repoName string, project Project) {
	r.beginAttempt()
	r.filter.Set(project.Name)
	if strings.TrimSpace(repoName) != "" {
		if err := writeMatchCache(repoName, project.Name); err != nil {
			warnf("failed to update match cache: %v", err)
		}
	}
}

// ClearFilter removes the active filter ("show all").
func (r *Resolver) ClearFilter() {
	r.beginAttempt()
	r.filter.Clear()
}

func (r *Resolver) beginAttempt() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempt++
	return r.attempt
}

func (r *Resolver) isCurrent(attempt uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return attempt == r.attempt
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "tkx warning: "+format+"\n", args...)
}
