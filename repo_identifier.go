package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
)

// repoDiscoverTimeout bounds how long workspace detection waits for the
// repository probe before degrading to the folder name.
const repoDiscoverTimeout = 3 * time.Second

var errNoWorkingDir = errors.New("working directory unavailable")

type repoProbe struct {
	Root      string
	Branch    string
	RemoteURL string
}

// discoverRepoFn is swapped in tests to simulate slow or absent repos.
var discoverRepoFn = discoverRepo

// DetectWorkspace derives a best-effort WorkspaceInfo for the current
// working directory. It never fails: without a repository (or when the
// probe exceeds its budget) RepoName falls back to FolderName.
func DetectWorkspace(ctx context.Context) WorkspaceInfo {
	dir, err := os.Getwd()
	if err != nil {
		return WorkspaceInfo{}
	}
	return detectWorkspaceIn(ctx, dir)
}

func detectWorkspaceIn(ctx context.Context, dir string) WorkspaceInfo {
	info := WorkspaceInfo{FolderName: folderName(dir)}

	probeCtx, cancel := context.WithTimeout(ctx, repoDiscoverTimeout)
	defer cancel()

	probeCh := make(chan repoProbe, 1)
	go func() {
		probe, err := discoverRepoFn(dir)
		if err != nil {
			return
		}
		select {
		case probeCh <- probe:
		case <-probeCtx.Done():
		}
	}()

	select {
	case probe := <-probeCh:
		info.Branch = probe.Branch
		if name := extractRepoName(probe.RemoteURL); name != "" {
			info.RepoName = name
		} else if root := strings.TrimSpace(probe.Root); root != "" {
			info.RepoName = filepath.Base(root)
		}
	case <-probeCtx.Done():
	}

	if strings.TrimSpace(info.RepoName) == "" {
		info.RepoName = info.FolderName
	}
	return info
}

func folderName(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

func discoverRepo(dir string) (repoProbe, error) {
	if strings.TrimSpace(dir) == "" {
		return repoProbe{}, errNoWorkingDir
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return repoProbe{}, err
	}

	probe := repoProbe{}
	if wt, err := repo.Worktree(); err == nil {
		probe.Root = wt.Filesystem.Root()
	}
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		probe.Branch = head.Name().Short()
	}
	if remote, err := repo.Remote("origin"); err == nil {
		cfg := remote.Config()
		if len(cfg.URLs) > 0 {
			probe.RemoteURL = strings.TrimSpace(cfg.URLs[0])
		}
	}
	return probe, nil
}

// extractRepoName derives a short repository name from a remote URL.
// Handles SSH (host:org/repo) and HTTP(S) (https://host/org/repo) forms
// and strips a trailing .git suffix. Returns "" when the URL yields no
// usable segment.
func extractRepoName(remoteURL string) string {
	remote := strings.TrimSpace(remoteURL)
	if remote == "" {
		return ""
	}
	pathOnly := false
	if i := strings.Index(remote, "://"); i >= 0 {
		// HTTP(S) form: the first segment after the scheme is the host.
		remote = remote[i+3:]
		if j := strings.Index(remote, "/"); j >= 0 {
			remote = remote[j+1:]
			pathOnly = true
		} else {
			return ""
		}
	} else if i := strings.Index(remote, ":"); i >= 0 {
		// SSH form host:org/repo; everything after the colon is path.
		remote = remote[i+1:]
		pathOnly = true
	}
	remote = strings.TrimSuffix(remote, ".git")
	remote = strings.Trim(remote, "/")
	if remote == "" {
		return ""
	}
	parts := strings.Split(remote, "/")
	if len(parts) == 1 && !pathOnly {
		// A bare host with no path segment is not a repository name.
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}
