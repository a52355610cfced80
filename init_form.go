package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const (
	initTrackerURLKey = "init_tracker_url"
	initTokenKey      = "init_tracker_token"
	initUserIDKey     = "init_user_id"
	initAIMatchKey    = "init_ai_match"
)

func tkxHuhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("212"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func newInitForm(trackerURL *string, token *string, userID *string, aiMatch *bool) *huh.Form {
	urlInput := huh.NewInput().
		Key(initTrackerURLKey).
		Title("Tracker URL").
		Placeholder("https://tracker.example.com").
		Value(trackerURL).
		Validate(func(value string) error {
			value = strings.TrimSpace(value)
			if value == "" {
				return errors.New("tracker URL is required")
			}
			if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
				return errors.New("tracker URL must start with http:// or https://")
			}
			return nil
		})

	tokenInput := huh.NewInput().
		Key(initTokenKey).
		Title("API token").
		EchoMode(huh.EchoModePassword).
		Value(token)

	userInput := huh.NewInput().
		Key(initUserIDKey).
		Title("User id (for my-tickets)").
		Value(userID)

	aiConfirm := huh.NewConfirm().
		Key(initAIMatchKey).
		Title("Enable AI project matching?").
		Affirmative("Yes").
		Negative("No").
		Value(aiMatch)

	return huh.NewForm(
		huh.NewGroup(urlInput, tokenInput, userInput, aiConfirm),
	).
		WithTheme(tkxHuhTheme()).
		WithShowHelp(false)
}

func runInit() error {
	cfg, err := LoadConfig()
	if err != nil {
		cfg = Config{}
	}
	aiMatch := true
	if cfg.AIMatch != nil {
		aiMatch = *cfg.AIMatch
	}

	form := newInitForm(&cfg.TrackerURL, &cfg.TrackerToken, &cfg.UserID, &aiMatch)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	cfg.AIMatch = &aiMatch
	if err := SaveConfig(cfg); err != nil {
		return err
	}
	path, err := configPath()
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}
