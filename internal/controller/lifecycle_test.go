package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_Transitions(t *testing.T) {
	l := NewLifecycle("v2")
	assert.Equal(t, StateParsed, l.State())
	assert.False(t, l.Controlling())

	assert.ErrorIs(t, l.beginActivate(), ErrInvalidTransition)

	require.NoError(t, l.beginInstall())
	assert.ErrorIs(t, l.beginInstall(), ErrInvalidTransition)
	require.NoError(t, l.finishInstall())
	assert.Equal(t, StateWaiting, l.State())

	require.NoError(t, l.beginActivate())
	assert.ErrorIs(t, l.beginInstall(), ErrInvalidTransition)
	require.NoError(t, l.finishActivate())
	assert.Equal(t, StateActive, l.State())
	assert.True(t, l.Controlling())

	// re-install keeps control of existing clients
	require.NoError(t, l.beginInstall())
	assert.True(t, l.Controlling())
}

func TestLifecycle_SkipWaiting(t *testing.T) {
	l := NewLifecycle("v2")
	assert.False(t, l.SkippingWaiting())
	l.SkipWaiting()
	assert.True(t, l.SkippingWaiting())
	assert.Equal(t, "v2", l.Version())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "parsed", StateParsed.String())
	assert.Equal(t, "installing", StateInstalling.String())
	assert.Equal(t, "waiting", StateWaiting.String())
	assert.Equal(t, "activating", StateActivating.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestConfig(t *testing.T) {
	t.Run("default names", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, []string{"hr-portal-v2", "hr-portal-static-v2", "hr-portal-dynamic-v2"}, cfg.CurrentCaches())
		assert.Len(t, cfg.PrecacheAssets, 10)
		assert.Equal(t, []int{100, 50, 100}, cfg.Notification.Vibrate)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("version bump renames every partition", func(t *testing.T) {
		cfg := NewConfig("hr-portal", "v3")
		assert.Equal(t, []string{"hr-portal-v3", "hr-portal-static-v3", "hr-portal-dynamic-v3"}, cfg.CurrentCaches())
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Config)
		}{
			{"empty partition name", func(c *Config) { c.DynamicCache = "" }},
			{"duplicate partition name", func(c *Config) { c.DynamicCache = c.StaticCache }},
			{"relative asset", func(c *Config) { c.PrecacheAssets = []string{"icons/a.png"} }},
			{"relative shell", func(c *Config) { c.ShellDocument = "index.html" }},
			{"relative settings path", func(c *Config) { c.SettingsPath = "api/settings" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := DefaultConfig()
				tt.mutate(&cfg)
				assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
			})
		}
	})

	t.Run("clone does not share slices", func(t *testing.T) {
		cfg := DefaultConfig()
		c := cfg.clone()
		c.PrecacheAssets[0] = "/changed"
		c.Notification.Vibrate[0] = 1
		assert.Equal(t, "/index.html", cfg.PrecacheAssets[0])
		assert.Equal(t, 100, cfg.Notification.Vibrate[0])
	})
}
