package schema

import (
	"fmt"
	"net/url"
	"strings"
)

// ServiceConfig defines defaults and limits for the session service.
type ServiceConfig struct {
	// DefaultURL is the landing page of the tab opened at startup.
	DefaultURL string
	// NewTabURL is the landing page of tabs opened later.
	NewTabURL string
	// SearchURL is the search provider template; %s receives the escaped query.
	SearchURL  string
	HistoryMax int
	// DisableShield starts the session with the shield off.
	DisableShield bool
}

const (
	// DefaultLandingURL is the page of the startup tab.
	DefaultLandingURL = "https://www.wikipedia.org"
	// DefaultNewTabURL is the page of tabs added later.
	DefaultNewTabURL = "https://www.google.com/search?igu=1"
	// DefaultHistoryMax caps the history list.
	DefaultHistoryMax = 50
)

// SearchEngine names a search provider offered in settings.
type SearchEngine string

var searchEngines = map[SearchEngine]string{
	"google":     "https://www.google.com/search?q=%s&igu=1",
	"duckduckgo": "https://duckduckgo.com/?q=%s",
	"bing":       "https://www.bing.com/search?q=%s",
}

// DefaultSearchEngine is used when no engine is configured.
const DefaultSearchEngine SearchEngine = "google"

// SearchURLFor returns the search template for a named engine.
func SearchURLFor(engine string) (string, bool) {
	name := SearchEngine(strings.ToLower(strings.TrimSpace(engine)))
	if name == "" {
		name = DefaultSearchEngine
	}
	template, ok := searchEngines[name]
	return template, ok
}

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if strings.TrimSpace(cfg.DefaultURL) == "" {
		cfg.DefaultURL = DefaultLandingURL
	}
	if strings.TrimSpace(cfg.NewTabURL) == "" {
		cfg.NewTabURL = DefaultNewTabURL
	}
	if strings.TrimSpace(cfg.SearchURL) == "" {
		cfg.SearchURL, _ = SearchURLFor(string(DefaultSearchEngine))
	}
	if cfg.HistoryMax <= 0 {
		cfg.HistoryMax = DefaultHistoryMax
	}
	if cfg.HistoryMax > DefaultHistoryMax {
		return ServiceConfig{}, fmt.Errorf("%w: history max %d exceeds %d", ErrInvalidConfig, cfg.HistoryMax, DefaultHistoryMax)
	}
	if strings.Count(cfg.SearchURL, "%s") != 1 {
		return ServiceConfig{}, fmt.Errorf("%w: search url must contain exactly one %%s", ErrInvalidConfig)
	}
	for _, raw := range []string{cfg.DefaultURL, cfg.NewTabURL} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return ServiceConfig{}, fmt.Errorf("%w: landing url %q must include scheme and host", ErrInvalidConfig, raw)
		}
	}
	return cfg, nil
}
