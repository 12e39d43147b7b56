package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pkt.systems/lumina/schema"
)

const maxTabTitle = 18

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	header := lipgloss.JoinVertical(lipgloss.Left, m.tabStrip(), m.addressBar())
	bodyHeight := max(m.height-lipgloss.Height(header)-2, 3)

	pageWidth := m.width
	var sidebar string
	if m.session.Panel != schema.PanelNone {
		pageWidth = max(m.width-sidebarWidth, minPageWidth)
		sidebar = sidebarStyle.Height(bodyHeight).Width(sidebarWidth - 2).Render(m.sidebarView())
	}
	page := pageStyle.Width(pageWidth).Height(bodyHeight).Render(m.pageView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, page, sidebar)

	footer := m.help.View(m.keys)
	if m.status != "" {
		footer = mutedStyle.Render(m.status) + "  " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) tabStrip() string {
	parts := make([]string, 0, len(m.session.Tabs)+1)
	for _, tab := range m.session.Tabs {
		label := truncate(tab.Title, maxTabTitle)
		if tab.IsLoading {
			label = m.spinner.View() + label
		}
		if tab.ID == m.session.ActiveTab {
			parts = append(parts, activeTabStyle.Render(label))
			continue
		}
		parts = append(parts, tabStyle.Render(label))
	}
	parts = append(parts, mutedStyle.Render(" + "))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) addressBar() string {
	shield := mutedStyle.Render("shield off")
	if m.session.ShieldEnabled {
		shield = okStyle.Render("shield on")
	}
	star := mutedStyle.Render("☆")
	if m.session.IsBookmarked {
		star = userStyle.Render("★")
	}
	var field string
	style := addressStyle
	if m.focus == focusAddress {
		field = m.address.View()
		style = addressFocus
	} else if tab, ok := m.session.ActiveTabSnapshot(); ok {
		field = tab.URL
	}
	return style.Width(max(m.width-2, 10)).Render(shield + "  " + field + "  " + star)
}

func (m Model) pageView() string {
	tab, ok := m.session.ActiveTabSnapshot()
	if !ok {
		return mutedStyle.Render("no session")
	}
	lines := []string{titleStyle.Render(tab.Title), mutedStyle.Render(tab.URL), ""}
	if host := hostOf(tab.URL); host != "" {
		status := "connection secure"
		if !strings.HasPrefix(tab.URL, "https://") {
			status = "connection not secure"
		}
		lines = append(lines, fmt.Sprintf("%s  %s", okStyle.Render(status), host))
	}
	if m.session.ShieldEnabled {
		lines = append(lines, okStyle.Render("shield active"))
	}
	lines = append(lines, "")
	switch failure, failed := m.failures[tab.ID]; {
	case tab.IsLoading:
		lines = append(lines, m.spinner.View()+" Analyzing connection...")
	case failed:
		lines = append(lines, errorStyle.Render("Refused to connect"), mutedStyle.Render(failure))
	default:
		lines = append(lines, mutedStyle.Render("page loaded"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) sidebarView() string {
	var heading string
	switch m.session.Panel {
	case schema.PanelAssistant:
		heading = "Lumina Assistant"
	case schema.PanelBookmarks:
		heading = "Bookmarks"
	case schema.PanelHistory:
		heading = "History"
	case schema.PanelSettings:
		heading = "Settings"
	}
	out := headingStyle.Render(heading) + "\n" + m.sidebar.View()
	if m.session.Panel == schema.PanelAssistant {
		out += "\n" + m.chat.View()
	}
	return out
}

// syncSidebar renders the visible panel into the sidebar viewport.
func (m *Model) syncSidebar() {
	width := m.sidebar.Width
	var content string
	switch m.session.Panel {
	case schema.PanelAssistant:
		content = m.chatContent(width)
	case schema.PanelBookmarks:
		content = bookmarkContent(m.session.Bookmarks)
	case schema.PanelHistory:
		content = historyContent(m.session.History)
	case schema.PanelSettings:
		content = m.settingsContent()
	}
	m.sidebar.SetContent(content)
	if m.session.Panel == schema.PanelAssistant {
		m.sidebar.GotoBottom()
	}
}

func (m Model) chatContent(width int) string {
	if len(m.session.Chat) == 0 && !m.session.AssistantBusy {
		return mutedStyle.Render("How can I help you today?\nI can summarize pages or help with complex queries while you browse.")
	}
	blocks := make([]string, 0, len(m.session.Chat)+1)
	for _, msg := range m.session.Chat {
		if msg.Role == schema.ChatRoleUser {
			blocks = append(blocks, userStyle.Render("you: ")+msg.Text)
			continue
		}
		blocks = append(blocks, m.markdown.render(msg, width))
	}
	if m.session.AssistantBusy {
		blocks = append(blocks, m.spinner.View()+mutedStyle.Render(" thinking"))
	}
	return strings.Join(blocks, "\n\n")
}

func bookmarkContent(bookmarks []schema.Bookmark) string {
	if len(bookmarks) == 0 {
		return mutedStyle.Render("No bookmarks yet.")
	}
	lines := make([]string, 0, len(bookmarks))
	for i, b := range bookmarks {
		lines = append(lines, entryLine(i, b.Title, b.URL))
	}
	return strings.Join(lines, "\n")
}

func historyContent(items []schema.HistoryItem) string {
	if len(items) == 0 {
		return mutedStyle.Render("History is empty.")
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, entryLine(i, item.Title, item.URL)+" "+mutedStyle.Render(item.Timestamp.Format("15:04")))
	}
	return strings.Join(lines, "\n")
}

func entryLine(i int, title, target string) string {
	prefix := "  "
	if i < 9 {
		prefix = fmt.Sprintf("%d ", i+1)
	}
	return prefix + truncate(title, 24) + " " + mutedStyle.Render(truncate(target, 32))
}

func (m Model) settingsContent() string {
	shield := "disabled"
	if m.session.ShieldEnabled {
		shield = "standard protection"
	}
	return strings.Join([]string{
		"Privacy shield: " + shield,
		fmt.Sprintf("History entries: %d", len(m.session.History)),
		fmt.Sprintf("Bookmarks: %d", len(m.session.Bookmarks)),
		"",
		mutedStyle.Render("s toggles the shield"),
		mutedStyle.Render("X clears browsing data"),
	}, "\n")
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
