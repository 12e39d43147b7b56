package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pkt.systems/lumina/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int             `mapstructure:"config_version" yaml:"config_version"`
	Session       SessionConfig   `mapstructure:"session" yaml:"session"`
	Render        RenderConfig    `mapstructure:"render" yaml:"render"`
	Assistant     AssistantConfig `mapstructure:"assistant" yaml:"assistant"`
	HTTP          HTTPConfig      `mapstructure:"http" yaml:"http"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// SessionConfig controls the browser session defaults.
type SessionConfig struct {
	DefaultURL   string `mapstructure:"default_url" yaml:"default_url"`
	NewTabURL    string `mapstructure:"new_tab_url" yaml:"new_tab_url"`
	SearchEngine string `mapstructure:"search_engine" yaml:"search_engine"`
	// SearchURL overrides SearchEngine with a custom template containing %s.
	SearchURL  string `mapstructure:"search_url" yaml:"search_url"`
	HistoryMax int    `mapstructure:"history_max" yaml:"history_max"`
	Shield     bool   `mapstructure:"shield" yaml:"shield"`
}

// RenderConfig selects the page render surface.
type RenderConfig struct {
	Driver         string `mapstructure:"driver" yaml:"driver"`
	Headless       bool   `mapstructure:"headless" yaml:"headless"`
	ChromePath     string `mapstructure:"chrome_path" yaml:"chrome_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	DelayMillis    int    `mapstructure:"delay_ms" yaml:"delay_ms"`
}

// AssistantConfig configures the sidebar assistant.
type AssistantConfig struct {
	Provider       string `mapstructure:"provider" yaml:"provider"`
	Model          string `mapstructure:"model" yaml:"model"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	APIKeyEnv      string `mapstructure:"api_key_env" yaml:"api_key_env"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr          string `mapstructure:"addr" yaml:"addr"`
	BasePath      string `mapstructure:"base_path" yaml:"base_path"`
	StreamHistory int    `mapstructure:"stream_history" yaml:"stream_history"`
}

const (
	// AssistantGemini selects the Gemini API.
	AssistantGemini = "gemini"
	// AssistantNone disables the assistant; chat replies with the fallback message.
	AssistantNone = "none"
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Session: SessionConfig{
			DefaultURL:   schema.DefaultLandingURL,
			NewTabURL:    schema.DefaultNewTabURL,
			SearchEngine: string(schema.DefaultSearchEngine),
			SearchURL:    "",
			HistoryMax:   schema.DefaultHistoryMax,
			Shield:       true,
		},
		Render: RenderConfig{
			Driver:         "delay",
			Headless:       true,
			ChromePath:     "",
			TimeoutSeconds: 30,
			DelayMillis:    1000,
		},
		Assistant: AssistantConfig{
			Provider:       AssistantGemini,
			Model:          "gemini-3-flash-preview",
			APIKey:         "",
			APIKeyEnv:      "GEMINI_API_KEY",
			TimeoutSeconds: 60,
		},
		HTTP: HTTPConfig{
			Addr:          "127.0.0.1:27490",
			BasePath:      "",
			StreamHistory: 1000,
		},
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lumina", "config.yaml"), nil
}

// ServiceConfig converts the session section into core service settings.
func (c Config) ServiceConfig() (schema.ServiceConfig, error) {
	searchURL := strings.TrimSpace(c.Session.SearchURL)
	if searchURL == "" {
		template, ok := schema.SearchURLFor(c.Session.SearchEngine)
		if !ok {
			return schema.ServiceConfig{}, fmt.Errorf("unknown session.search_engine %q: %w", c.Session.SearchEngine, schema.ErrInvalidConfig)
		}
		searchURL = template
	}
	return schema.NormalizeServiceConfig(schema.ServiceConfig{
		DefaultURL:    c.Session.DefaultURL,
		NewTabURL:     c.Session.NewTabURL,
		SearchURL:     searchURL,
		HistoryMax:    c.Session.HistoryMax,
		DisableShield: !c.Session.Shield,
	})
}

// Timeout returns the render timeout.
func (r RenderConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Delay returns the fixed load delay of the delay driver.
func (r RenderConfig) Delay() time.Duration {
	return time.Duration(r.DelayMillis) * time.Millisecond
}

// Timeout returns the assistant reply timeout.
func (a AssistantConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ResolveAPIKey returns the explicit key or the value of APIKeyEnv.
func (a AssistantConfig) ResolveAPIKey() string {
	if key := strings.TrimSpace(a.APIKey); key != "" {
		return key
	}
	if a.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(a.APIKeyEnv))
}
