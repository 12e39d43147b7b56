package schema

import "strings"

// SidebarPanel identifies the auxiliary view shown next to the page.
type SidebarPanel string

const (
	// PanelNone hides the sidebar.
	PanelNone SidebarPanel = "none"
	// PanelAssistant shows the assistant conversation.
	PanelAssistant SidebarPanel = "assistant"
	// PanelBookmarks shows the bookmark list.
	PanelBookmarks SidebarPanel = "bookmarks"
	// PanelHistory shows recent navigations.
	PanelHistory SidebarPanel = "history"
	// PanelSettings shows shell settings.
	PanelSettings SidebarPanel = "settings"
)

var panels = []SidebarPanel{PanelNone, PanelAssistant, PanelBookmarks, PanelHistory, PanelSettings}

// Panels returns all panel values, PanelNone first.
func Panels() []SidebarPanel {
	out := make([]SidebarPanel, len(panels))
	copy(out, panels)
	return out
}

// ParsePanel returns the panel for a user supplied name.
// "ai" is accepted as an alias for the assistant panel.
func ParsePanel(name string) (SidebarPanel, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "", "none":
		return PanelNone, nil
	case "assistant", "ai":
		return PanelAssistant, nil
	case "bookmarks":
		return PanelBookmarks, nil
	case "history":
		return PanelHistory, nil
	case "settings":
		return PanelSettings, nil
	default:
		return "", ErrInvalidPanel
	}
}

// Valid reports whether p is a known panel value.
func (p SidebarPanel) Valid() bool {
	for _, known := range panels {
		if p == known {
			return true
		}
	}
	return false
}
