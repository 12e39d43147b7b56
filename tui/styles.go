package tui

import "github.com/charmbracelet/lipgloss"

const (
	sidebarWidth = 42
	minPageWidth = 30
)

var (
	colorAccent = lipgloss.Color("#60a5fa")
	colorMuted  = lipgloss.Color("#64748b")
	colorOK     = lipgloss.Color("#34d399")
	colorWarn   = lipgloss.Color("#f87171")
	colorPanel  = lipgloss.Color("#1e293b")

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#f8fafc")).Background(colorPanel)
	addressStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
	addressFocus   = addressStyle.BorderForeground(colorAccent)
	pageStyle      = lipgloss.NewStyle().Padding(1, 2)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	okStyle        = lipgloss.NewStyle().Foreground(colorOK)
	errorStyle     = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	sidebarStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(colorPanel).Padding(0, 1)
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1)
	userStyle      = lipgloss.NewStyle().Foreground(colorAccent)
)
