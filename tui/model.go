// Package tui is the terminal shell of a lumina session: a tab strip, an
// address bar, the page status pane, and the sidebar panels.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"pkt.systems/lumina/core"
	"pkt.systems/lumina/internal/eventbus"
	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

type focus int

const (
	focusPage focus = iota
	focusAddress
	focusChat
)

// Options configures the shell model.
type Options struct {
	Service core.Service
	// Events, when set, refreshes the view on every session event.
	Events *eventbus.Bus
	Logger pslog.Logger
}

// Model is the bubbletea model of the shell.
type Model struct {
	ctx     context.Context
	service core.Service
	events  <-chan schema.SessionEvent
	logger  pslog.Logger

	keys     keyMap
	help     help.Model
	address  textinput.Model
	chat     textinput.Model
	sidebar  viewport.Model
	spinner  spinner.Model
	markdown *markdownCache

	session  schema.SessionSnapshot
	failures map[schema.TabID]string
	status   string
	focus    focus
	width    int
	height   int
	quitting bool
}

// New builds a shell model. The returned cancel func releases the event
// subscription and must be called once the program exits.
func New(ctx context.Context, opts Options) (Model, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	address := textinput.New()
	address.Placeholder = "Search or enter address"
	address.Prompt = ""
	chat := textinput.New()
	chat.Placeholder = "Ask Lumina..."
	chat.Prompt = "> "

	m := Model{
		ctx:      ctx,
		service:  opts.Service,
		logger:   logger,
		keys:     defaultKeyMap(),
		help:     help.New(),
		address:  address,
		chat:     chat,
		sidebar:  viewport.New(sidebarWidth-2, 10),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		markdown: newMarkdownCache(),
		failures: make(map[schema.TabID]string),
		width:    100,
		height:   30,
	}
	cancel := func() {}
	if opts.Events != nil {
		m.events, cancel = opts.Events.Subscribe()
	}
	return m, cancel
}

// Run starts the shell on the terminal and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	m, cancel := New(ctx, opts)
	defer cancel()
	m.logger.Info("shell start", "events", opts.Events != nil)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		m.logger.Warn("shell stopped", "err", err)
		return err
	}
	m.logger.Info("shell stopped")
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), waitForEvent(m.events), m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case snapshotMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.session = msg.session
		m.syncSidebar()
		return m, nil
	case sessionEventMsg:
		m.trackEvent(msg.event)
		return m, tea.Batch(m.refresh(), waitForEvent(m.events))
	case opDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = msg.status
		}
		return m, m.refresh()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	switch m.focus {
	case focusAddress:
		return m.handleAddressKey(msg)
	case focusChat:
		return m.handleChatKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Address):
		m.focus = focusAddress
		if tab, ok := m.session.ActiveTabSnapshot(); ok {
			m.address.SetValue(tab.URL)
		}
		m.address.CursorEnd()
		cmd := m.address.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.NewTab):
		return m, m.addTab()
	case key.Matches(msg, m.keys.CloseTab):
		return m, m.closeTab(m.session.ActiveTab)
	case key.Matches(msg, m.keys.NextTab):
		return m, m.activateOffset(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.activateOffset(-1)
	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	case key.Matches(msg, m.keys.Bookmark):
		return m, m.toggleBookmark()
	case key.Matches(msg, m.keys.Shield):
		return m, m.toggleShield()
	case key.Matches(msg, m.keys.Assistant):
		opening := m.session.Panel != schema.PanelAssistant
		cmd := m.togglePanel(schema.PanelAssistant)
		if opening {
			m.focus = focusChat
			focusCmd := m.chat.Focus()
			return m, tea.Batch(cmd, focusCmd)
		}
		return m, cmd
	case key.Matches(msg, m.keys.Bookmarks):
		return m, m.togglePanel(schema.PanelBookmarks)
	case key.Matches(msg, m.keys.History):
		return m, m.togglePanel(schema.PanelHistory)
	case key.Matches(msg, m.keys.Settings):
		return m, m.togglePanel(schema.PanelSettings)
	case key.Matches(msg, m.keys.ClearHistory):
		return m, m.clearHistory()
	case key.Matches(msg, m.keys.ClosePanel):
		if m.session.Panel == schema.PanelNone {
			return m, nil
		}
		return m, m.closePanel()
	case key.Matches(msg, m.keys.Open):
		return m, m.openEntry(msg.String())
	}

	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	return m, cmd
}

func (m Model) handleAddressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = focusPage
		m.address.Blur()
		m.address.SetValue("")
		return m, nil
	case tea.KeyEnter:
		input := strings.TrimSpace(m.address.Value())
		m.focus = focusPage
		m.address.Blur()
		m.address.SetValue("")
		if input == "" {
			return m, nil
		}
		return m, m.navigate(input)
	}
	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = focusPage
		m.chat.Blur()
		return m, nil
	case tea.KeyEnter:
		text := m.chat.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.chat.SetValue("")
		return m, m.sendChat(text)
	}
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.help.Width = width
	m.address.Width = max(width-12, 10)
	m.chat.Width = sidebarWidth - 6
	m.sidebar.Width = sidebarWidth - 2
	m.sidebar.Height = max(height-8, 3)
	m.syncSidebar()
}

func (m *Model) trackEvent(event schema.SessionEvent) {
	switch event.Type {
	case schema.EventLoadFailed:
		if event.Tab != nil {
			m.failures[event.Tab.ID] = event.Error
		}
	case schema.EventTabUpdated:
		if event.Tab != nil && event.Tab.IsLoading {
			delete(m.failures, event.Tab.ID)
		}
	case schema.EventTabClosed:
		if event.Tab != nil {
			delete(m.failures, event.Tab.ID)
		}
	}
}

// activeIndex returns the position of the active tab in the strip.
func (m Model) activeIndex() int {
	for i, tab := range m.session.Tabs {
		if tab.ID == m.session.ActiveTab {
			return i
		}
	}
	return -1
}

func (m Model) activateOffset(offset int) tea.Cmd {
	count := len(m.session.Tabs)
	idx := m.activeIndex()
	if count < 2 || idx < 0 {
		return nil
	}
	next := (idx + offset + count) % count
	return m.activateTab(m.session.Tabs[next].ID)
}

// openEntry navigates to the n-th entry of the visible bookmarks or history
// panel.
func (m Model) openEntry(digit string) tea.Cmd {
	if len(digit) != 1 || digit[0] < '1' || digit[0] > '9' {
		return nil
	}
	idx := int(digit[0] - '1')
	var target string
	switch m.session.Panel {
	case schema.PanelBookmarks:
		if idx < len(m.session.Bookmarks) {
			target = m.session.Bookmarks[idx].URL
		}
	case schema.PanelHistory:
		if idx < len(m.session.History) {
			target = m.session.History[idx].URL
		}
	}
	if target == "" {
		return nil
	}
	return m.navigate(target)
}
