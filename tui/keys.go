package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit         key.Binding
	Address      key.Binding
	NewTab       key.Binding
	CloseTab     key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	Reload       key.Binding
	Bookmark     key.Binding
	Shield       key.Binding
	Assistant    key.Binding
	Bookmarks    key.Binding
	History      key.Binding
	Settings     key.Binding
	ClearHistory key.Binding
	ClosePanel   key.Binding
	Submit       key.Binding
	Open         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Address:      key.NewBinding(key.WithKeys("/", "ctrl+l"), key.WithHelp("/", "address")),
		NewTab:       key.NewBinding(key.WithKeys("t", "ctrl+t"), key.WithHelp("t", "new tab")),
		CloseTab:     key.NewBinding(key.WithKeys("w", "ctrl+w"), key.WithHelp("w", "close tab")),
		NextTab:      key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next tab")),
		PrevTab:      key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev tab")),
		Reload:       key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "reload")),
		Bookmark:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "bookmark")),
		Shield:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shield")),
		Assistant:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "assistant")),
		Bookmarks:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bookmarks")),
		History:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Settings:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "settings")),
		ClearHistory: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear history")),
		ClosePanel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Open:         key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "open entry")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Address, k.NewTab, k.CloseTab, k.NextTab, k.Reload, k.Assistant, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Address, k.Reload, k.Bookmark, k.Shield},
		{k.NewTab, k.CloseTab, k.NextTab, k.PrevTab},
		{k.Assistant, k.Bookmarks, k.History, k.Settings},
		{k.Open, k.ClearHistory, k.ClosePanel, k.Quit},
	}
}
