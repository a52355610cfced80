package main

import (
	"strings"
	"sync"
)

// FilterState holds the active project filter for one process. It is
// created at startup and handed to every consumer that reads or mutates
// it; there is no package-level instance. At most one project is active
// at a time and the value does not survive the process.
type FilterState struct {
	mu      sync.Mutex
	project string
}

func NewFilterState() *FilterState {
	return &FilterState{}
}

// Set activates a project filter. An empty name clears it.
func (f *FilterState) Set(projectName string) {
	projectName = strings.TrimSpace(projectName)
	f.mu.Lock()
	f.project = projectName
	f.mu.Unlock()
}

// Clear removes the active filter ("show all").
func (f *FilterState) Clear() {
	f.Set("")
}

// Get returns the active project name and whether one is set.
func (f *FilterState) Get() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.project, f.project != ""
}
