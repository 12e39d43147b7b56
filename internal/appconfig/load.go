package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"pkt.systems/lumina/internal/render"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("session.default_url", cfg.Session.DefaultURL)
	v.SetDefault("session.new_tab_url", cfg.Session.NewTabURL)
	v.SetDefault("session.search_engine", cfg.Session.SearchEngine)
	v.SetDefault("session.search_url", cfg.Session.SearchURL)
	v.SetDefault("session.history_max", cfg.Session.HistoryMax)
	v.SetDefault("session.shield", cfg.Session.Shield)
	v.SetDefault("render.driver", cfg.Render.Driver)
	v.SetDefault("render.headless", cfg.Render.Headless)
	v.SetDefault("render.chrome_path", cfg.Render.ChromePath)
	v.SetDefault("render.timeout_seconds", cfg.Render.TimeoutSeconds)
	v.SetDefault("render.delay_ms", cfg.Render.DelayMillis)
	v.SetDefault("assistant.provider", cfg.Assistant.Provider)
	v.SetDefault("assistant.model", cfg.Assistant.Model)
	v.SetDefault("assistant.api_key", cfg.Assistant.APIKey)
	v.SetDefault("assistant.api_key_env", cfg.Assistant.APIKeyEnv)
	v.SetDefault("assistant.timeout_seconds", cfg.Assistant.TimeoutSeconds)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("http.base_path", cfg.HTTP.BasePath)
	v.SetDefault("http.stream_history", cfg.HTTP.StreamHistory)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if _, err := cfg.ServiceConfig(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if _, err := render.ParseDriver(cfg.Render.Driver); err != nil {
		return fmt.Errorf("render.driver: %w", err)
	}
	if cfg.Render.TimeoutSeconds < 0 || cfg.Render.DelayMillis < 0 {
		return fmt.Errorf("render timeouts must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Assistant.Provider)) {
	case AssistantGemini, AssistantNone, "":
	default:
		return fmt.Errorf("unsupported assistant.provider %q", cfg.Assistant.Provider)
	}
	return validateHTTPConfig(cfg.HTTP)
}

func validateHTTPConfig(cfg HTTPConfig) error {
	basePath := strings.TrimSpace(cfg.BasePath)
	if basePath != "" {
		if strings.Contains(basePath, "://") {
			return fmt.Errorf("http.base_path must be a path prefix, not a URL")
		}
		if strings.ContainsAny(basePath, "?#") {
			return fmt.Errorf("http.base_path must not include query or fragment")
		}
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Render.ChromePath = expandEnv(cfg.Render.ChromePath)
	cfg.Assistant.APIKey = expandEnv(cfg.Assistant.APIKey)
	cfg.HTTP.Addr = expandEnv(cfg.HTTP.Addr)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
