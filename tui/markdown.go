package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"pkt.systems/lumina/schema"
)

// markdownCache renders assistant replies once per message and width.
type markdownCache struct {
	width    int
	renderer *glamour.TermRenderer
	rendered map[schema.EntryID]string
}

func newMarkdownCache() *markdownCache {
	return &markdownCache{rendered: make(map[schema.EntryID]string)}
}

func (c *markdownCache) render(msg schema.ChatMessage, width int) string {
	if width != c.width || c.renderer == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return msg.Text
		}
		c.width = width
		c.renderer = renderer
		clear(c.rendered)
	}
	if out, ok := c.rendered[msg.ID]; ok {
		return out
	}
	out, err := c.renderer.Render(msg.Text)
	if err != nil {
		return msg.Text
	}
	out = strings.Trim(out, "\n")
	c.rendered[msg.ID] = out
	return out
}
