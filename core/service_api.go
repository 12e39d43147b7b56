package core

import (
	"context"

	"pkt.systems/lumina/schema"
)

// Service is the transport-agnostic API of a browser session: tabs, navigation,
// history, bookmarks, sidebar, shield, and the assistant log.
type Service interface {
	AddTab(ctx context.Context, req schema.AddTabRequest) (schema.AddTabResponse, error)
	CloseTab(ctx context.Context, req schema.CloseTabRequest) (schema.CloseTabResponse, error)
	ActivateTab(ctx context.Context, req schema.ActivateTabRequest) (schema.ActivateTabResponse, error)
	Navigate(ctx context.Context, req schema.NavigateRequest) (schema.NavigateResponse, error)
	Reload(ctx context.Context, req schema.ReloadRequest) (schema.NavigateResponse, error)
	CompleteLoad(ctx context.Context, req schema.CompleteLoadRequest) (schema.CompleteLoadResponse, error)
	ToggleBookmark(ctx context.Context, req schema.ToggleBookmarkRequest) (schema.ToggleBookmarkResponse, error)
	ClearHistory(ctx context.Context, req schema.ClearHistoryRequest) (schema.ClearHistoryResponse, error)
	TogglePanel(ctx context.Context, req schema.TogglePanelRequest) (schema.TogglePanelResponse, error)
	ClosePanel(ctx context.Context, req schema.ClosePanelRequest) (schema.TogglePanelResponse, error)
	ToggleShield(ctx context.Context, req schema.ToggleShieldRequest) (schema.ToggleShieldResponse, error)
	SendChat(ctx context.Context, req schema.SendChatRequest) (schema.SendChatResponse, error)
	Snapshot(ctx context.Context, req schema.SnapshotRequest) (schema.SnapshotResponse, error)
}
