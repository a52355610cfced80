package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	TrackerURL   string `json:"tracker_url"`
	TrackerToken string `json:"tracker_token,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	AIMatch      *bool  `json:"ai_match,omitempty"`
}

var errNotConfigured = errors.New("tkx not configured. run: tkx init")

func LoadConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	cfg.TrackerURL = strings.TrimRight(strings.TrimSpace(cfg.TrackerURL), "/")
	cfg.TrackerToken = strings.TrimSpace(cfg.TrackerToken)
	cfg.UserID = strings.TrimSpace(cfg.UserID)
	if env := strings.TrimSpace(os.Getenv("TKX_TRACKER_TOKEN")); env != "" {
		cfg.TrackerToken = env
	}
	if env := strings.TrimSpace(os.Getenv("TKX_TRACKER_URL")); env != "" {
		cfg.TrackerURL = strings.TrimRight(env, "/")
	}
	return cfg, nil
}

// AIMatchEnabled reports whether the AI matching tier should run.
// Unset defaults to enabled.
func (c Config) AIMatchEnabled() bool {
	if aiMatchDisabledByEnv() {
		return false
	}
	if c.AIMatch == nil {
		return true
	}
	return *c.AIMatch
}

func ConfigExists() (bool, error) {
	path, err := configPath()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func SaveConfig(cfg Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cfg.TrackerURL = strings.TrimRight(strings.TrimSpace(cfg.TrackerURL), "/")
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func configPath() (string, error) {
	home, err := tkxHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.json"), nil
}

func tkxHomeDir() (string, error) {
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return "", errors.New("HOME not set")
	}
	return filepath.Join(home, ".tkx"), nil
}
