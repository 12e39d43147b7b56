package httpapi

import (
	"context"
	"sync"
	"time"

	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

// StreamEvent is sent to SSE clients.
type StreamEvent struct {
	Seq       uint64                  `json:"seq"`
	Type      string                  `json:"type"`
	Event     *schema.SessionEvent    `json:"event,omitempty"`
	Snapshot  *schema.SessionSnapshot `json:"snapshot,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

const (
	streamTypeSnapshot = "snapshot"
	streamTypeSession  = "session"
)

// Hub broadcasts session events to stream clients and keeps a bounded history
// for replay after reconnects.
type Hub struct {
	mu          sync.Mutex
	seq         uint64
	history     []StreamEvent
	subs        map[chan StreamEvent]struct{}
	historySize int
	log         pslog.Logger
	now         func() time.Time
}

// NewHub constructs a hub with the given history size.
func NewHub(historySize int, logger pslog.Logger) *Hub {
	if historySize <= 0 {
		historySize = 1000
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Hub{
		subs:        make(map[chan StreamEvent]struct{}),
		historySize: historySize,
		log:         logger,
		now:         time.Now,
	}
}

// OnSessionEvent implements core.EventSink.
func (h *Hub) OnSessionEvent(event schema.SessionEvent) {
	h.log.Trace("hub session event", "type", event.Type)
	h.publish(StreamEvent{
		Type:      streamTypeSession,
		Event:     &event,
		Timestamp: h.now(),
	})
}

// Subscribe registers a subscriber. It returns the current sequence so callers
// can tell replayed events from live ones.
func (h *Hub) Subscribe() (<-chan StreamEvent, func(), uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan StreamEvent, 256)
	h.subs[ch] = struct{}{}
	seq := h.seq
	h.log.Info("hub subscribe", "subs", len(h.subs), "history", len(h.history))
	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			remaining := len(h.subs)
			h.mu.Unlock()
			h.log.Info("hub unsubscribe", "subs", remaining)
		})
	}
	return ch, unsub, seq
}

// Replay returns events after the provided seq up to and including until.
// complete is false when the retained history no longer reaches back to after,
// or after is ahead of until; callers then resync from a snapshot.
func (h *Hub) Replay(after, until uint64) (events []StreamEvent, complete bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case after > until:
		h.log.Debug("hub replay unknown id", "after", after, "seq", until)
		return nil, false
	case after == until:
		return nil, true
	case len(h.history) == 0 || h.history[0].Seq > after+1:
		h.log.Debug("hub replay gap", "after", after, "retained", len(h.history))
		return nil, false
	}
	events = make([]StreamEvent, 0, until-after)
	for _, event := range h.history {
		if event.Seq > after && event.Seq <= until {
			events = append(events, event)
		}
	}
	h.log.Debug("hub replay", "after", after, "count", len(events))
	return events, true
}

func (h *Hub) publish(event StreamEvent) {
	h.mu.Lock()
	h.seq++
	event.Seq = h.seq
	h.history = append(h.history, event)
	if len(h.history) > h.historySize {
		h.history = h.history[len(h.history)-h.historySize:]
	}
	dropped := 0
	for sub := range h.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	h.mu.Unlock()
	if dropped > 0 {
		h.log.Warn("hub event dropped", "type", event.Type, "dropped", dropped)
	}
}
