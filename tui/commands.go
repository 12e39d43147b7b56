package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"pkt.systems/lumina/schema"
)

type snapshotMsg struct {
	session schema.SessionSnapshot
	err     error
}

type sessionEventMsg struct {
	event schema.SessionEvent
}

type opDoneMsg struct {
	status string
	err    error
}

func waitForEvent(events <-chan schema.SessionEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return sessionEventMsg{event: event}
	}
}

func (m Model) refresh() tea.Cmd {
	service, ctx := m.service, m.ctx
	return func() tea.Msg {
		resp, err := service.Snapshot(ctx, schema.SnapshotRequest{})
		return snapshotMsg{session: resp.Session, err: err}
	}
}

// op runs fn as a command and reports its status line.
func (m Model) op(fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		status, err := fn(ctx)
		return opDoneMsg{status: status, err: err}
	}
}

func (m Model) navigate(input string) tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		resp, err := service.Navigate(ctx, schema.NavigateRequest{Input: input})
		if err != nil {
			return "", err
		}
		return "loading " + resp.Tab.URL, nil
	})
}

func (m Model) reload() tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		resp, err := service.Reload(ctx, schema.ReloadRequest{})
		if err != nil {
			return "", err
		}
		return "reloading " + resp.Tab.URL, nil
	})
}

func (m Model) addTab() tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		_, err := service.AddTab(ctx, schema.AddTabRequest{})
		return "", err
	})
}

func (m Model) closeTab(id schema.TabID) tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		resp, err := service.CloseTab(ctx, schema.CloseTabRequest{TabID: id})
		if err != nil {
			return "", err
		}
		if !resp.Closed {
			return "the last tab stays open", nil
		}
		return "", nil
	})
}

func (m Model) activateTab(id schema.TabID) tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		_, err := service.ActivateTab(ctx, schema.ActivateTabRequest{TabID: id})
		return "", err
	})
}

func (m Model) toggleBookmark() tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		resp, err := service.ToggleBookmark(ctx, schema.ToggleBookmarkRequest{})
		if err != nil {
			return "", err
		}
		if resp.Added {
			return "bookmarked " + resp.Bookmark.Title, nil
		}
		return "removed bookmark " + resp.Bookmark.Title, nil
	})
}

func (m Model) toggleShield() tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		resp, err := service.ToggleShield(ctx, schema.ToggleShieldRequest{})
		if err != nil {
			return "", err
		}
		if resp.Enabled {
			return "shield enabled", nil
		}
		return "shield disabled", nil
	})
}

func (m Model) togglePanel(panel schema.SidebarPanel) tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		_, err := service.TogglePanel(ctx, schema.TogglePanelRequest{Panel: panel})
		return "", err
	})
}

func (m Model) closePanel() tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		_, err := service.ClosePanel(ctx, schema.ClosePanelRequest{})
		return "", err
	})
}

func (m Model) clearHistory() tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		resp, err := service.ClearHistory(ctx, schema.ClearHistoryRequest{})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("cleared %d history items", resp.Removed), nil
	})
}

func (m Model) sendChat(text string) tea.Cmd {
	service := m.service
	return m.op(func(ctx context.Context) (string, error) {
		resp, err := service.SendChat(ctx, schema.SendChatRequest{Text: text})
		if err != nil {
			return "", err
		}
		if resp.Failed {
			return "assistant unavailable", nil
		}
		return "", nil
	})
}
