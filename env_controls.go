package main

import (
	"os"
	"strings"
)

func envFlagEnabled(name string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func aiMatchDisabledByEnv() bool {
	return envFlagEnabled("TKX_DISABLE_AI_MATCH")
}

func colorDisabledByEnv() bool {
	return envFlagEnabled("NO_COLOR") || envFlagEnabled("TKX_NO_COLOR")
}
