package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// No config file on the search path: everything comes from defaults
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "lurelab", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.InDelta(t, 0.30, cfg.Detection.ScamThreshold, 0.0001)
	assert.Equal(t, 1000, cfg.Memory.MaxConversations)
	assert.Equal(t, 120*time.Minute, cfg.Memory.Retention)
	assert.InDelta(t, 0.8, cfg.Engagement.ExtractionThreshold, 0.0001)
	assert.InDelta(t, 0.7, cfg.Engagement.SafetyThreshold, 0.0001)
	assert.Equal(t, 50, cfg.Engagement.MaxTurns)
	assert.Equal(t, 3, cfg.Engagement.MaxPhoneNumbers)
	assert.Equal(t, 2, cfg.Engagement.MaxBankAccounts)
	assert.Equal(t, "ramesh", cfg.Engagement.DefaultPersona)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "lurelab:", cfg.Redis.KeyPrefix)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  http_port: 9191
engagement:
  max_turns: 20
  default_persona: priya
auth:
  enabled: true
  api_key: test-key
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.HTTPPort)
	assert.Equal(t, 20, cfg.Engagement.MaxTurns)
	assert.Equal(t, "priya", cfg.Engagement.DefaultPersona)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "test-key", cfg.Auth.APIKey)

	// Untouched keys keep their defaults
	assert.InDelta(t, 0.30, cfg.Detection.ScamThreshold, 0.0001)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LURELAB_AUTH_ENABLED", "true")
	t.Setenv("LURELAB_AUTH_API_KEY", "env-key")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: lurelab\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "env-key", cfg.Auth.APIKey)
}
