package main

import (
	"context"
	"errors"
	"testing"
)

func TestExtractRepoName(t *testing.T) {
	cases := []struct {
		remote string
		want   string
	}{
		{"git@github.com:org/repo.git", "repo"},
		{"git@github.com:org/repo", "repo"},
		{"https://github.com/org/repo.git", "repo"},
		{"https://github.com/org/repo", "repo"},
		{"https://github.com/org/repo/", "repo"},
		{"ssh://git@github.com/org/repo.git", "repo"},
		{"https://gitlab.example.com/group/subgroup/repo.git", "repo"},
		{"host:repo.git", "repo"},
		{"https://github.com", ""},
		{"https://github.com/", ""},
		{"", ""},
		{"   ", ""},
		{"just-a-name", ""},
	}
	for _, tc := range cases {
		if got := extractRepoName(tc.remote); got != tc.want {
			t.Errorf("extractRepoName(%q) = %q, want %q", tc.remote, got, tc.want)
		}
	}
}

func TestDetectWorkspaceIn_UsesRemoteName(t *testing.T) {
	oldDiscover := discoverRepoFn
	discoverRepoFn = func(string) (repoProbe, error) {
		return repoProbe{
			Root:      "/home/dev/src/checkout-dir",
			Branch:    "feature/login",
			RemoteURL: "git@github.com:acme/payments.git",
		}, nil
	}
	t.Cleanup(func() { discoverRepoFn = oldDiscover })

	info := detectWorkspaceIn(context.Background(), "/home/dev/src/checkout-dir")
	if info.RepoName != "payments" {
		t.Fatalf("expected repo name from remote, got %q", info.RepoName)
	}
	if info.Branch != "feature/login" {
		t.Fatalf("expected branch %q, got %q", "feature/login", info.Branch)
	}
	if info.FolderName != "checkout-dir" {
		t.Fatalf("expected folder name %q, got %q", "checkout-dir", info.FolderName)
	}
}

func TestDetectWorkspaceIn_FallsBackToRootBasename(t *testing.T) {
	oldDiscover := discoverRepoFn
	discoverRepoFn = func(string) (repoProbe, error) {
		return repoProbe{Root: "/home/dev/src/local-only", Branch: "main"}, nil
	}
	t.Cleanup(func() { discoverRepoFn = oldDiscover })

	info := detectWorkspaceIn(context.Background(), "/home/dev/src/local-only/sub")
	if info.RepoName != "local-only" {
		t.Fatalf("expected repo name from worktree root, got %q", info.RepoName)
	}
}

func TestDetectWorkspaceIn_NoRepoFallsBackToFolder(t *testing.T) {
	oldDiscover := discoverRepoFn
	discoverRepoFn = func(string) (repoProbe, error) {
		return repoProbe{}, errors.New("repository does not exist")
	}
	t.Cleanup(func() { discoverRepoFn = oldDiscover })

	info := detectWorkspaceIn(context.Background(), "/home/dev/src/plain-dir")
	if info.RepoName != "plain-dir" {
		t.Fatalf("expected folder fallback, got %q", info.RepoName)
	}
	if info.Branch != "" {
		t.Fatalf("expected no branch, got %q", info.Branch)
	}
}

func TestDetectWorkspaceIn_SlowProbeFallsBackToFolder(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	oldDiscover := discoverRepoFn
	discoverRepoFn = func(string) (repoProbe, error) {
		<-block
		return repoProbe{RemoteURL: "git@github.com:acme/too-late.git"}, nil
	}
	t.Cleanup(func() { discoverRepoFn = oldDiscover })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	info := detectWorkspaceIn(ctx, "/home/dev/src/slow-repo")
	if info.RepoName != "slow-repo" {
		t.Fatalf("expected folder fallback when probe exceeds budget, got %q", info.RepoName)
	}
}

func TestFolderName(t *testing.T) {
	cases := []struct {
		dir  string
		want string
	}{
		{"/home/dev/src/project", "project"},
		{"/", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := folderName(tc.dir); got != tc.want {
			t.Errorf("folderName(%q) = %q, want %q", tc.dir, got, tc.want)
		}
	}
}
