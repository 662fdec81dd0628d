package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig stores the HTTP API configuration.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// GeminiConfig stores Gemini Live API configurations.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OpenAIConfig stores OpenAI Realtime API configurations, used when the
// voice provider is set to "openai".
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	VoiceProfile string `yaml:"voice_profile"`
}

// VoiceConfig stores settings for the live voice assistant.
type VoiceConfig struct {
	Provider      string `yaml:"provider"` // "gemini" (default) or "openai"
	AssistantName string `yaml:"assistant_name"`
}

// ColorConfig maps event origins to display colors.
type ColorConfig struct {
	Default string `yaml:"default"`
	Form    string `yaml:"form"`
	Voice   string `yaml:"voice"`
}

// CalendarConfig stores calendar behavior settings.
type CalendarConfig struct {
	Colors         ColorConfig `yaml:"colors"`
	SeedDemoEvents bool        `yaml:"seed_demo_events"`
}

// Config stores the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Voice    VoiceConfig    `yaml:"voice"`
	Calendar CalendarConfig `yaml:"calendar"`
	LogLevel string         `yaml:"log_level"`
}

// LoadConfig loads the configuration from the given file path and applies
// defaults for omitted fields.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filePath, err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash-live-001"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-realtime-preview"
	}
	if c.OpenAI.VoiceProfile == "" {
		c.OpenAI.VoiceProfile = "shimmer"
	}
	if c.Voice.Provider == "" {
		c.Voice.Provider = "gemini"
	}
	if c.Voice.AssistantName == "" {
		c.Voice.AssistantName = "Lumina"
	}
	if c.Calendar.Colors.Default == "" {
		c.Calendar.Colors.Default = "bg-indigo-500"
	}
	if c.Calendar.Colors.Form == "" {
		c.Calendar.Colors.Form = "bg-blue-500"
	}
	if c.Calendar.Colors.Voice == "" {
		c.Calendar.Colors.Voice = "bg-purple-500"
	}
}
