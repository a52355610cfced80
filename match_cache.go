package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// matchCacheEntry records the project last resolved for a repo so repeat
// runs can skip the AI tier. Entries are advisory: a cached name that no
// longer appears in the fetched project list is ignored.
type matchCacheEntry struct {
	RepoName    string `json:"repo_name"`
	ProjectName string `json:"project_name"`
	MatchedUnix int64  `json:"matched_unix"`
}

func matchCachePath(repoName string) (string, error) {
	repoName = strings.TrimSpace(repoName)
	if repoName == "" {
		return "", errors.New("repo name required")
	}
	home, err := tkxHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "cache", "project_matches", hashString(repoName)+".json"), nil
}

func readMatchCache(repoName string) (matchCacheEntry, bool) {
	path, err := matchCachePath(repoName)
	if err != nil {
		return matchCacheEntry{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return matchCacheEntry{}, false
	}
	var entry matchCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return matchCacheEntry{}, false
	}
	if strings.TrimSpace(entry.ProjectName) == "" {
		return matchCacheEntry{}, false
	}
	return entry, true
}

func writeMatchCache(repoName string, projectName string) error {
	projectName = strings.TrimSpace(projectName)
	if projectName == "" {
		return nil
	}
	path, err := matchCachePath(repoName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	entry := matchCacheEntry{
		RepoName:    strings.TrimSpace(repoName),
		ProjectName: projectName,
		MatchedUnix: time.Now().Unix(),
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func clearMatchCache(repoName string) error {
	path, err := matchCachePath(repoName)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// cachedProject resolves a cache entry against the freshly fetched project
// list; vanished projects invalidate the entry.
func cachedProject(repoName string, projects []Project) *Project {
	entry, ok := readMatchCache(repoName)
	if !ok {
		return nil
	}
	for i := range projects {
		if projects[i].Name == entry.ProjectName {
			return &projects[i]
		}
	}
	return nil
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
