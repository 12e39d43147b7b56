package core

import (
	"net/url"
	"strings"
	"unicode"

	"pkt.systems/lumina/schema"
)

// Resolver turns address bar input into a navigable URL.
type Resolver struct {
	searchURL string
}

// NewResolver returns a resolver that builds search URLs from template, which
// must contain a single %s. An empty template selects the default engine.
func NewResolver(template string) Resolver {
	if strings.TrimSpace(template) == "" {
		template, _ = schema.SearchURLFor(string(schema.DefaultSearchEngine))
	}
	return Resolver{searchURL: template}
}

var defaultResolver = NewResolver("")

// Resolve resolves input with the default search engine.
func Resolve(input string) string {
	return defaultResolver.Resolve(input)
}

// Resolve never fails. Input with an http(s) scheme is returned as is, a dotted
// word without whitespace is treated as a host, and anything else becomes a search.
func (r Resolver) Resolve(input string) string {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return input
	}
	if strings.Contains(input, ".") && !strings.ContainsFunc(input, unicode.IsSpace) {
		return "https://" + input
	}
	return strings.Replace(r.searchURL, "%s", escapeQuery(input), 1)
}

// escapeQuery encodes spaces as %20 rather than '+'.
func escapeQuery(input string) string {
	return strings.ReplaceAll(url.QueryEscape(input), "+", "%20")
}

// titleFor derives a display title from the host of a resolved URL.
func titleFor(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	return parsed.Host
}
