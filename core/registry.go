package core

import "pkt.systems/lumina/schema"

// registry owns the ordered set of tabs and the active tab reference.
// It is never empty.
type registry struct {
	tabs      map[schema.TabID]*tab
	order     []schema.TabID
	active    schema.TabID
	newTabURL string
}

func newRegistry(initialURL, newTabURL string) *registry {
	r := &registry{
		tabs:      make(map[schema.TabID]*tab),
		newTabURL: newTabURL,
	}
	r.active = r.insert(initialURL)
	return r
}

// add appends a tab at the new-tab landing page. It does not activate it.
func (r *registry) add() schema.TabID {
	return r.insert(r.newTabURL)
}

func (r *registry) insert(url string) schema.TabID {
	t := &tab{
		ID:    schema.TabID(newID()),
		URL:   url,
		Title: titleFor(url),
	}
	r.tabs[t.ID] = t
	r.order = append(r.order, t.ID)
	return t.ID
}

// close removes a tab unless it is the last one. When the active tab is closed
// the reference moves to the last remaining tab before the entry is dropped.
func (r *registry) close(id schema.TabID) bool {
	if len(r.order) <= 1 {
		return false
	}
	if _, ok := r.tabs[id]; !ok {
		return false
	}
	remaining := removeTabID(append([]schema.TabID(nil), r.order...), id)
	if r.active == id {
		r.active = remaining[len(remaining)-1]
	}
	delete(r.tabs, id)
	r.order = remaining
	return true
}

func (r *registry) activate(id schema.TabID) bool {
	if _, ok := r.tabs[id]; !ok {
		return false
	}
	r.active = id
	return true
}

// setURL updates url, title, and loading in place. Unknown ids are ignored.
func (r *registry) setURL(id schema.TabID, url string, loading bool) bool {
	t := r.tabs[id]
	if t == nil {
		return false
	}
	t.URL = url
	t.Title = titleFor(url)
	t.Loading = loading
	return true
}

// setLoading updates only the loading flag. Unknown ids are ignored.
func (r *registry) setLoading(id schema.TabID, loading bool) bool {
	t := r.tabs[id]
	if t == nil {
		return false
	}
	t.Loading = loading
	return true
}

// begin moves a tab to Loading at url and arms a new navigation sequence.
func (r *registry) begin(id schema.TabID, url string) (schema.NavigationSeq, bool) {
	if !r.setURL(id, url, true) {
		return 0, false
	}
	t := r.tabs[id]
	t.seq++
	return t.seq, true
}

// complete returns a tab to Idle if seq is the navigation it is waiting for.
// A non-empty title replaces the host-derived one.
func (r *registry) complete(id schema.TabID, seq schema.NavigationSeq, title string) bool {
	t := r.tabs[id]
	if t == nil || t.seq != seq {
		return false
	}
	if title != "" {
		t.Title = title
	}
	return r.setLoading(id, false)
}

func (r *registry) get(id schema.TabID) *tab {
	return r.tabs[id]
}

func (r *registry) activeTab() *tab {
	return r.tabs[r.active]
}

func (r *registry) len() int {
	return len(r.order)
}

func (r *registry) snapshots() []schema.TabSnapshot {
	out := make([]schema.TabSnapshot, 0, len(r.order))
	for _, id := range r.order {
		t := r.tabs[id]
		if t == nil {
			continue
		}
		out = append(out, t.Snapshot(id == r.active))
	}
	return out
}

func removeTabID(order []schema.TabID, id schema.TabID) []schema.TabID {
	for i, current := range order {
		if current == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
