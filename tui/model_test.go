package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"pkt.systems/lumina/core"
	"pkt.systems/lumina/internal/eventbus"
	"pkt.systems/lumina/schema"
)

func newTestModel(t *testing.T, deps core.ServiceDeps) Model {
	t.Helper()
	service, err := core.NewService(schema.ServiceConfig{}, deps)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	m, cancel := New(context.Background(), Options{Service: service, Events: nil})
	t.Cleanup(cancel)
	return run(t, m, m.refresh())
}

// press delivers a key without running the resulting commands.
func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		next, c := m.Update(k)
		m = next.(Model)
		cmd = c
	}
	return m, cmd
}

// pressRun delivers a key and runs every command it produced.
func pressRun(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	return run(t, next.(Model), cmd)
}

func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for depth := 0; cmd != nil; depth++ {
		if depth > 16 {
			t.Fatalf("command chain did not settle")
		}
		msg := cmd()
		switch msg := msg.(type) {
		case nil, tea.QuitMsg, cursor.BlinkMsg:
			return m
		case tea.BatchMsg:
			for _, c := range msg {
				m = run(t, m, c)
			}
			return m
		}
		next, nextCmd := m.Update(msg)
		m = next.(Model)
		cmd = nextCmd
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func activeURL(t *testing.T, m Model) string {
	t.Helper()
	tab, ok := m.session.ActiveTabSnapshot()
	if !ok {
		t.Fatalf("no active tab in snapshot")
	}
	return tab.URL
}

func TestAddressBarNavigates(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	m, _ = press(t, m, runes("/"))
	if m.focus != focusAddress {
		t.Fatalf("expected address focus")
	}
	if got := m.address.Value(); got != schema.DefaultLandingURL {
		t.Fatalf("address prefill = %q", got)
	}
	m.address.SetValue("golang tutorials")
	m = pressRun(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	want := "https://www.google.com/search?q=golang%20tutorials&igu=1"
	if got := activeURL(t, m); got != want {
		t.Fatalf("active url = %q, want %q", got, want)
	}
	if len(m.session.History) != 1 || m.session.History[0].URL != want {
		t.Fatalf("unexpected history: %+v", m.session.History)
	}
	if m.focus != focusPage {
		t.Fatalf("expected focus to return to the page")
	}
	if !strings.HasPrefix(m.status, "loading ") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestAddressBarEscapeCancels(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	m, _ = press(t, m, runes("/"))
	m.address.SetValue("example.com")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Fatalf("expected no command on escape")
	}
	if m.focus != focusPage || m.address.Value() != "" {
		t.Fatalf("expected cleared, blurred address bar")
	}
}

func TestTabKeys(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	first := m.session.ActiveTab

	m = pressRun(t, m, runes("t"))
	if len(m.session.Tabs) != 2 {
		t.Fatalf("expected 2 tabs, got %d", len(m.session.Tabs))
	}
	second := m.session.ActiveTab
	if second == first {
		t.Fatalf("expected new tab to be active")
	}
	if got := activeURL(t, m); got != schema.DefaultNewTabURL {
		t.Fatalf("new tab url = %q", got)
	}

	m = pressRun(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.session.ActiveTab != first {
		t.Fatalf("expected tab to cycle to the first tab")
	}
	m = pressRun(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.session.ActiveTab != second {
		t.Fatalf("expected shift+tab to cycle back")
	}

	m = pressRun(t, m, runes("w"))
	if len(m.session.Tabs) != 1 || m.session.ActiveTab != first {
		t.Fatalf("expected only the first tab to remain: %+v", m.session.Tabs)
	}
	m = pressRun(t, m, runes("w"))
	if len(m.session.Tabs) != 1 {
		t.Fatalf("the last tab must not close")
	}
	if m.status != "the last tab stays open" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestPanelKeysToggle(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	m = pressRun(t, m, runes("b"))
	if m.session.Panel != schema.PanelBookmarks {
		t.Fatalf("panel = %q, want bookmarks", m.session.Panel)
	}
	m = pressRun(t, m, runes("b"))
	if m.session.Panel != schema.PanelNone {
		t.Fatalf("second press should close the panel, got %q", m.session.Panel)
	}
	m = pressRun(t, m, runes("h"))
	m = pressRun(t, m, runes("o"))
	if m.session.Panel != schema.PanelSettings {
		t.Fatalf("panel = %q, want settings", m.session.Panel)
	}
	m = pressRun(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.session.Panel != schema.PanelNone {
		t.Fatalf("escape should close the panel, got %q", m.session.Panel)
	}
}

func TestShieldAndBookmarkKeys(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	if !m.session.ShieldEnabled {
		t.Fatalf("shield should default to enabled")
	}
	m = pressRun(t, m, runes("s"))
	if m.session.ShieldEnabled || m.status != "shield disabled" {
		t.Fatalf("shield = %v status = %q", m.session.ShieldEnabled, m.status)
	}
	m = pressRun(t, m, runes("d"))
	if !m.session.IsBookmarked || len(m.session.Bookmarks) != 1 {
		t.Fatalf("expected active page to be bookmarked")
	}
	m = pressRun(t, m, runes("d"))
	if m.session.IsBookmarked || len(m.session.Bookmarks) != 0 {
		t.Fatalf("expected bookmark to be removed")
	}
}

func TestAssistantChatFallsBackWithoutAssistant(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	m = pressRun(t, m, runes("a"))
	if m.session.Panel != schema.PanelAssistant || m.focus != focusChat {
		t.Fatalf("expected assistant panel with chat focus")
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("blank chat input should not send")
	}

	m.chat.SetValue("summarize this page")
	m = pressRun(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.session.Chat) != 2 {
		t.Fatalf("expected question and reply, got %+v", m.session.Chat)
	}
	reply := m.session.Chat[1]
	if reply.Role != schema.ChatRoleAssistant || reply.Text != core.ChatFailureReply {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if m.status != "assistant unavailable" {
		t.Fatalf("status = %q", m.status)
	}
	if m.chat.Value() != "" {
		t.Fatalf("chat input should be cleared")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != focusPage {
		t.Fatalf("escape should leave the chat input")
	}
}

func TestHistoryEntryOpensByNumber(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	for _, input := range []string{"example.com", "example.org"} {
		m = run(t, m, m.navigate(input))
	}
	m = pressRun(t, m, runes("h"))
	m = pressRun(t, m, runes("2"))
	if got := activeURL(t, m); got != "https://example.com" {
		t.Fatalf("active url = %q", got)
	}
	if len(m.session.History) != 3 {
		t.Fatalf("expected the reopened entry to be recorded, got %d", len(m.session.History))
	}

	m = pressRun(t, m, runes("9"))
	if len(m.session.History) != 3 {
		t.Fatalf("out of range entry must be ignored")
	}
}

func TestClearHistoryKey(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	m = run(t, m, m.navigate("example.com"))
	m = pressRun(t, m, runes("X"))
	if len(m.session.History) != 0 {
		t.Fatalf("expected empty history")
	}
	if m.status != "cleared 1 history items" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestViewShowsSessionState(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = next.(Model)
	m = pressRun(t, m, runes("h"))

	view := m.View()
	for _, want := range []string{"wikipedia.org", "shield on", "History", "History is empty."} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestLoadFailureEventShowsFallback(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	tab, _ := m.session.ActiveTabSnapshot()
	next, cmd := m.Update(sessionEventMsg{event: schema.SessionEvent{
		Type:  schema.EventLoadFailed,
		Tab:   &tab,
		Error: "net::ERR_CONNECTION_REFUSED",
	}})
	m = run(t, next.(Model), cmd)
	if !strings.Contains(m.View(), "Refused to connect") {
		t.Fatalf("expected failure fallback in view")
	}

	loading := tab
	loading.IsLoading = true
	next, _ = m.Update(sessionEventMsg{event: schema.SessionEvent{Type: schema.EventTabUpdated, Tab: &loading}})
	m = next.(Model)
	if _, ok := m.failures[tab.ID]; ok {
		t.Fatalf("a new load should clear the failure")
	}
}

func TestEventBusRefreshesModel(t *testing.T) {
	bus := eventbus.New(nil)
	service, err := core.NewService(schema.ServiceConfig{}, core.ServiceDeps{EventSink: bus})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	m, cancel := New(context.Background(), Options{Service: service, Events: bus})
	defer cancel()
	m = run(t, m, m.refresh())

	if _, err := service.ToggleShield(context.Background(), schema.ToggleShieldRequest{}); err != nil {
		t.Fatalf("ToggleShield: %v", err)
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- waitForEvent(m.events)() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for bus event")
	}
	next, _ := m.Update(msg)
	m = run(t, next.(Model), next.(Model).refresh())
	if m.session.ShieldEnabled {
		t.Fatalf("expected refreshed snapshot to show the shield disabled")
	}
}

func TestCtrlCQuitsFromAnyFocus(t *testing.T) {
	m := newTestModel(t, core.ServiceDeps{})
	m, _ = press(t, m, runes("/"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.quitting {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Fatalf("view should be empty after quitting")
	}
}
