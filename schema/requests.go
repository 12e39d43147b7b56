package schema

// Tab lifecycle.

// AddTabRequest describes a request to open a new tab.
type AddTabRequest struct{}

// AddTabResponse reports the created tab, which is now active.
type AddTabResponse struct {
	Tab TabSnapshot
}

// CloseTabRequest describes a request to close a tab.
type CloseTabRequest struct {
	TabID TabID
}

// CloseTabResponse reports whether the tab was closed and the resulting active tab.
// Closed is false when the tab was the last one or did not exist.
type CloseTabResponse struct {
	Closed    bool
	ActiveTab TabID
}

// ActivateTabRequest describes a request to activate a tab.
type ActivateTabRequest struct {
	TabID TabID
}

// ActivateTabResponse reports the activated tab snapshot.
type ActivateTabResponse struct {
	Tab TabSnapshot
}

// Navigation.

// NavigateRequest describes address bar input for the active tab.
type NavigateRequest struct {
	Input string
}

// NavigateResponse reports the tab after the optimistic update.
type NavigateResponse struct {
	Tab     TabSnapshot
	Seq     NavigationSeq
	History HistoryItem
}

// ReloadRequest describes a request to reload the active tab.
type ReloadRequest struct{}

// LoadRequest is handed to the render surface for a navigation.
type LoadRequest struct {
	TabID         TabID
	Seq           NavigationSeq
	URL           string
	ShieldEnabled bool
}

// LoadResult is reported by the render surface when a load finishes.
// Err is non-nil when the surface showed its failure fallback. Title, when
// set, is the document title and replaces the host-derived one.
type LoadResult struct {
	TabID TabID
	Seq   NavigationSeq
	Title string
	Err   error
}

// CompleteLoadRequest closes the loading state of a navigation.
type CompleteLoadRequest struct {
	TabID   TabID
	Seq     NavigationSeq
	Title   string
	Failure string
}

// CompleteLoadResponse reports whether the completion changed tab state.
// Applied is false for unknown tabs and superseded navigations.
type CompleteLoadResponse struct {
	Applied bool
}

// Bookmarks and history.

// ToggleBookmarkRequest toggles the bookmark for the active tab's url.
type ToggleBookmarkRequest struct{}

// ToggleBookmarkResponse reports the toggled bookmark.
type ToggleBookmarkResponse struct {
	Added    bool
	Bookmark Bookmark
}

// ClearHistoryRequest removes all history items.
type ClearHistoryRequest struct{}

// ClearHistoryResponse reports how many items were removed.
type ClearHistoryResponse struct {
	Removed int
}

// Chrome state.

// TogglePanelRequest selects a sidebar panel with toggle semantics.
type TogglePanelRequest struct {
	Panel SidebarPanel
}

// ClosePanelRequest hides the sidebar regardless of the visible panel.
type ClosePanelRequest struct{}

// TogglePanelResponse reports the panel now visible.
type TogglePanelResponse struct {
	Panel SidebarPanel
}

// ToggleShieldRequest flips the shield flag.
type ToggleShieldRequest struct{}

// ToggleShieldResponse reports the new shield state.
type ToggleShieldResponse struct {
	Enabled bool
}

// Assistant.

// SendChatRequest sends user text to the assistant.
type SendChatRequest struct {
	Text string
}

// SendChatResponse reports the assistant entry appended to the log.
// Failed is true when Reply carries the fallback text.
type SendChatResponse struct {
	Reply  ChatMessage
	Failed bool
}

// AssistantRequest is handed to the assistant collaborator.
type AssistantRequest struct {
	PageURL  string
	UserText string
}

// Session view.

// SnapshotRequest describes a request for the full session view.
type SnapshotRequest struct{}

// SnapshotResponse carries the session view.
type SnapshotResponse struct {
	Session SessionSnapshot
}
