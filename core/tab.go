package core

import "pkt.systems/lumina/schema"

// tab tracks the state of a single navigable page.
type tab struct {
	ID      schema.TabID
	URL     string
	Title   string
	Loading bool
	// seq is the navigation whose completion is awaited.
	seq schema.NavigationSeq
}

// Snapshot returns a transport-friendly view of the tab.
func (t *tab) Snapshot(active bool) schema.TabSnapshot {
	return schema.TabSnapshot{
		ID:        t.ID,
		URL:       t.URL,
		Title:     t.Title,
		IsLoading: t.Loading,
		Active:    active,
	}
}
