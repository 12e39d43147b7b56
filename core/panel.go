package core

import "pkt.systems/lumina/schema"

// nextPanel applies toggle semantics: selecting the open panel hides the
// sidebar, anything else switches to it directly.
func nextPanel(current, selected schema.SidebarPanel) schema.SidebarPanel {
	if current == selected {
		return schema.PanelNone
	}
	return selected
}
