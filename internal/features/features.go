// Package features holds runtime toggles for the optional parts of a search:
// caching, event hooks and offer snapshots.
package features

import (
	"sort"
	"sync"
)

// FeatureFlag represents a feature flag configuration.
type FeatureFlag struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

// Manager manages feature flags.
type Manager struct {
	mu    sync.RWMutex
	flags map[string]*FeatureFlag
}

// Predefined feature flag names
const (
	// FeatureCacheEnabled enables/disables caching of upstream lookups
	FeatureCacheEnabled = "cache_enabled"
	// FeatureEventHooksEnabled enables/disables event-driven hooks
	FeatureEventHooksEnabled = "event_hooks_enabled"
	// FeatureSnapshotsEnabled enables/disables persisting offers for the details endpoint
	FeatureSnapshotsEnabled = "snapshots_enabled"
)

// NewManager creates an empty feature flag manager.
func NewManager() *Manager {
	return &Manager{flags: make(map[string]*FeatureFlag)}
}

// NewDefaultManager registers the predefined flags with their initial state.
func NewDefaultManager(cache, eventHooks, snapshots bool) *Manager {
	m := NewManager()
	m.Register(FeatureCacheEnabled, cache, "Cache airport names and search responses")
	m.Register(FeatureEventHooksEnabled, eventHooks, "Publish search and details events")
	m.Register(FeatureSnapshotsEnabled, snapshots, "Persist searched offers so their details can be served")
	return m
}

// Register registers a new feature flag.
func (m *Manager) Register(name string, enabled bool, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.flags[name] = &FeatureFlag{
		Name:        name,
		Enabled:     enabled,
		Description: description,
	}
}

// IsEnabled reports whether a flag is enabled. Unknown flags are disabled.
// A nil manager enables everything.
func (m *Manager) IsEnabled(name string) bool {
	if m == nil {
		return true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	flag, exists := m.flags[name]
	return exists && flag.Enabled
}

// Set changes a registered flag and reports whether it exists.
func (m *Manager) Set(name string, enabled bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	flag, exists := m.flags[name]
	if exists {
		flag.Enabled = enabled
	}
	return exists
}

// Enable enables a feature flag.
func (m *Manager) Enable(name string) { m.Set(name, true) }

// Disable disables a feature flag.
func (m *Manager) Disable(name string) { m.Set(name, false) }

// List returns copies of all flags sorted by name.
func (m *Manager) List() []FeatureFlag {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]FeatureFlag, 0, len(m.flags))
	for _, v := range m.flags {
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
