package core

import (
	"time"

	"pkt.systems/lumina/schema"
)

// historyList keeps visits most-recent-first, capped at max entries.
type historyList struct {
	entries []schema.HistoryItem
	max     int
	last    time.Time
}

func newHistory(max int) *historyList {
	if max <= 0 || max > schema.DefaultHistoryMax {
		max = schema.DefaultHistoryMax
	}
	return &historyList{max: max}
}

// Record prepends a visit. Repeated urls are kept. Timestamps never go backwards.
func (h *historyList) Record(url, title string, now time.Time) schema.HistoryItem {
	if now.Before(h.last) {
		now = h.last
	}
	h.last = now
	item := schema.HistoryItem{
		ID:        schema.EntryID(newID()),
		URL:       url,
		Title:     title,
		Timestamp: now,
	}
	h.entries = append([]schema.HistoryItem{item}, h.entries...)
	if len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}
	return item
}

func (h *historyList) Entries() []schema.HistoryItem {
	if h == nil {
		return nil
	}
	return append([]schema.HistoryItem(nil), h.entries...)
}

// Clear drops all entries and reports how many were removed.
func (h *historyList) Clear() int {
	n := len(h.entries)
	h.entries = nil
	return n
}
