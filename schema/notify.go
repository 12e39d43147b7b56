package schema

// SessionEventType describes what changed in the session.
type SessionEventType string

const (
	// EventTabCreated indicates a tab was created.
	EventTabCreated SessionEventType = "tab.created"
	// EventTabClosed indicates a tab was closed.
	EventTabClosed SessionEventType = "tab.closed"
	// EventTabActivated indicates a different tab became active.
	EventTabActivated SessionEventType = "tab.activated"
	// EventTabUpdated indicates a tab's url, title, or loading flag changed.
	EventTabUpdated SessionEventType = "tab.updated"
	// EventLoadFailed indicates the render surface could not load a page.
	EventLoadFailed SessionEventType = "tab.load_failed"
	// EventHistory indicates the history list changed.
	EventHistory SessionEventType = "history"
	// EventBookmarks indicates the bookmark set changed.
	EventBookmarks SessionEventType = "bookmarks"
	// EventPanel indicates the sidebar panel changed.
	EventPanel SessionEventType = "panel"
	// EventShield indicates the shield flag changed.
	EventShield SessionEventType = "shield"
	// EventChat indicates a chat message was appended or the assistant busy flag changed.
	EventChat SessionEventType = "chat"
)

// SessionEvent represents a change to the session. Only the fields relevant to
// Type are populated. Revision is the session revision the change produced.
type SessionEvent struct {
	Type          SessionEventType `json:"type"`
	Revision      uint64           `json:"revision"`
	Tab           *TabSnapshot     `json:"tab,omitempty"`
	ActiveTab     TabID            `json:"active_tab,omitempty"`
	History       *HistoryItem     `json:"history,omitempty"`
	Bookmark      *Bookmark        `json:"bookmark,omitempty"`
	BookmarkAdded bool             `json:"bookmark_added,omitempty"`
	Panel         SidebarPanel     `json:"panel,omitempty"`
	ShieldEnabled bool             `json:"shield_enabled"`
	Message       *ChatMessage     `json:"message,omitempty"`
	AssistantBusy bool             `json:"assistant_busy"`
	Error         string           `json:"error,omitempty"`
}
