package schema

import "time"

// TabID identifies a tab for its whole lifetime.
type TabID string

// EntryID identifies a history item, bookmark, or chat message.
type EntryID string

// NavigationSeq orders navigations within a single tab.
type NavigationSeq uint64

// HistoryItem is a single recorded navigation.
type HistoryItem struct {
	ID        EntryID   `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// Bookmark is a saved URL. Bookmarks are unique by URL.
type Bookmark struct {
	ID    EntryID `json:"id"`
	Title string  `json:"title"`
	URL   string  `json:"url"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	// ChatRoleUser marks text typed by the user.
	ChatRoleUser ChatRole = "user"
	// ChatRoleAssistant marks text produced by the assistant (or its fallback).
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the assistant conversation log.
type ChatMessage struct {
	ID        EntryID   `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
