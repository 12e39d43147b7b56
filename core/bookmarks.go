package core

import "pkt.systems/lumina/schema"

// bookmarkSet holds bookmarks unique by url, in insertion order.
type bookmarkSet struct {
	entries []schema.Bookmark
}

// Toggle removes the bookmark for url if present, otherwise adds one.
// It reports the affected bookmark and whether it was added.
func (b *bookmarkSet) Toggle(url, title string) (schema.Bookmark, bool) {
	for i, entry := range b.entries {
		if entry.URL == url {
			b.entries = append(b.entries[:i:i], b.entries[i+1:]...)
			return entry, false
		}
	}
	entry := schema.Bookmark{
		ID:    schema.EntryID(newID()),
		Title: title,
		URL:   url,
	}
	b.entries = append(b.entries, entry)
	return entry, true
}

func (b *bookmarkSet) Contains(url string) bool {
	for _, entry := range b.entries {
		if entry.URL == url {
			return true
		}
	}
	return false
}

func (b *bookmarkSet) Entries() []schema.Bookmark {
	return append([]schema.Bookmark(nil), b.entries...)
}
