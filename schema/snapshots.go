package schema

// TabSnapshot is a read-only view of tab state for transports.
type TabSnapshot struct {
	ID        TabID  `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	IsLoading bool   `json:"is_loading"`
	Active    bool   `json:"active"`
}

// SessionSnapshot is a read-only view of the whole session.
type SessionSnapshot struct {
	Tabs          []TabSnapshot `json:"tabs"`
	ActiveTab     TabID         `json:"active_tab"`
	History       []HistoryItem `json:"history"`
	Bookmarks     []Bookmark    `json:"bookmarks"`
	IsBookmarked  bool          `json:"is_bookmarked"`
	Panel         SidebarPanel  `json:"panel"`
	ShieldEnabled bool          `json:"shield_enabled"`
	Chat          []ChatMessage `json:"chat"`
	AssistantBusy bool          `json:"assistant_busy"`

	// Revision counts the mutations reflected here. Events with a revision at
	// or below it are already applied.
	Revision uint64 `json:"revision"`
}

// ActiveTabSnapshot returns the snapshot of the active tab.
func (s SessionSnapshot) ActiveTabSnapshot() (TabSnapshot, bool) {
	for _, tab := range s.Tabs {
		if tab.ID == s.ActiveTab {
			return tab, true
		}
	}
	return TabSnapshot{}, false
}
