package main

import (
	"context"
	"encoding/json"
	"strings"
)

// AIMatch asks the tracker's AI endpoint to pick the best project for a
// repo name. Returns the matched name exactly as it appears in candidates,
// or "" when no project is a reasonable match. Errors are transport-level
// only; "no match" is a normal outcome.
func (c *TrackerClient) AIMatch(ctx context.Context, repoName string, candidates []string) (string, error) {
	repoName = strings.TrimSpace(repoName)
	if repoName == "" || len(candidates) == 0 {
		return "", nil
	}
	payload := struct {
		Repo     string   `json:"repo"`
		Projects []string `json:"projects"`
	}{Repo: repoName, Projects: candidates}

	data, err := c.send(ctx, "POST", "/api/ai/match-project/", payload)
	if err != nil {
		return "", err
	}
	return extractAIProject(string(data), candidates), nil
}

// extractAIProject scans a free-form completion body for the first
// decodable JSON object carrying a "project" key. The model sometimes
// wraps its answer in prose or code fences, so every "{" is a candidate
// start. A null project or a name not present in candidates yields "".
func extractAIProject(raw string, candidates []string) string {
	for offset := 0; offset < len(raw); offset++ {
		if raw[offset] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(raw[offset:]))
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			continue
		}
		value, ok := obj["project"]
		if !ok {
			continue
		}
		if value == nil {
			return ""
		}
		name, ok := value.(string)
		if !ok {
			return ""
		}
		for _, candidate := range candidates {
			if name == candidate {
				return name
			}
		}
		warnf("AI match returned project not in list: %s", name)
		return ""
	}
	return ""
}
