package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager(t *testing.T) {
	m := NewDefaultManager(true, false, true)

	assert.True(t, m.IsEnabled(FeatureCacheEnabled))
	assert.False(t, m.IsEnabled(FeatureEventHooksEnabled))
	assert.False(t, m.IsEnabled("unknown"))

	m.Disable(FeatureCacheEnabled)
	m.Enable(FeatureEventHooksEnabled)
	assert.False(t, m.Set("unknown", true))
	assert.False(t, m.IsEnabled(FeatureCacheEnabled))
	assert.True(t, m.IsEnabled(FeatureEventHooksEnabled))
	assert.False(t, m.IsEnabled("unknown"))
}

func TestManager_ListReturnsSortedCopies(t *testing.T) {
	m := NewDefaultManager(true, true, true)

	list := m.List()
	assert.Equal(t, []string{FeatureCacheEnabled, FeatureEventHooksEnabled, FeatureSnapshotsEnabled},
		[]string{list[0].Name, list[1].Name, list[2].Name})

	list[2].Enabled = false
	assert.True(t, m.IsEnabled(FeatureSnapshotsEnabled))
}

func TestManager_NilEnablesEverything(t *testing.T) {
	var m *Manager
	assert.True(t, m.IsEnabled(FeatureCacheEnabled))
}
