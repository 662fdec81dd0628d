package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosorry9853-png/Calendar/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_key: "test-key"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "gemini-2.0-flash-live-001", cfg.Gemini.Model)
	assert.Equal(t, "gemini", cfg.Voice.Provider)
	assert.Equal(t, "Lumina", cfg.Voice.AssistantName)
	assert.Equal(t, "shimmer", cfg.OpenAI.VoiceProfile)
	assert.Equal(t, "bg-indigo-500", cfg.Calendar.Colors.Default)
	assert.Equal(t, "bg-blue-500", cfg.Calendar.Colors.Form)
	assert.Equal(t, "bg-purple-500", cfg.Calendar.Colors.Voice)
	assert.False(t, cfg.Calendar.SeedDemoEvents)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: "debug"
server:
  listen_addr: ":9090"
voice:
  provider: "openai"
  assistant_name: "Aria"
openai:
  api_key: "sk-test"
  model: "gpt-4o-realtime-custom"
  voice_profile: "alloy"
calendar:
  seed_demo_events: true
  colors:
    voice: "bg-pink-500"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "openai", cfg.Voice.Provider)
	assert.Equal(t, "Aria", cfg.Voice.AssistantName)
	assert.Equal(t, "alloy", cfg.OpenAI.VoiceProfile)
	assert.True(t, cfg.Calendar.SeedDemoEvents)
	assert.Equal(t, "bg-pink-500", cfg.Calendar.Colors.Voice)

	// Untouched fields still get defaults.
	assert.Equal(t, "bg-blue-500", cfg.Calendar.Colors.Form)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: a: mapping")

	_, err := config.LoadConfig(path)

	assert.Error(t, err)
}
