package eventbus

import (
	"context"
	"sync"

	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

// DefaultDepth is the buffer size of each subscriber channel.
const DefaultDepth = 256

// Bus fans session events out to subscribers. Slow subscribers lose events
// rather than stall the session.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan schema.SessionEvent]filter
	log   pslog.Logger
	depth int
}

type filter map[schema.SessionEventType]struct{}

func (f filter) match(event schema.SessionEvent) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[event.Type]
	return ok
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan schema.SessionEvent]filter),
		log:   logger,
		depth: DefaultDepth,
	}
}

// Subscribe registers a subscriber and returns its channel and a cancel func.
// With no types every event is delivered.
func (b *Bus) Subscribe(types ...schema.SessionEventType) (<-chan schema.SessionEvent, func()) {
	if b == nil {
		return nil, func() {}
	}
	var f filter
	if len(types) > 0 {
		f = make(filter, len(types))
		for _, t := range types {
			f[t] = struct{}{}
		}
	}
	ch := make(chan schema.SessionEvent, b.depth)
	b.mu.Lock()
	b.subs[ch] = f
	count := len(b.subs)
	b.mu.Unlock()
	b.log.Debug("eventbus subscribe", "subs", count, "types", len(types))

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
			b.log.Debug("eventbus unsubscribe")
		})
	}
}

// Subscribers reports the number of live subscribers.
func (b *Bus) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// OnSessionEvent publishes a session event.
func (b *Bus) OnSessionEvent(event schema.SessionEvent) {
	if b == nil {
		return
	}
	dropped := 0
	b.mu.Lock()
	for sub, f := range b.subs {
		if !f.match(event) {
			continue
		}
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	b.mu.Unlock()
	if dropped > 0 {
		b.log.Trace("eventbus dropped", "type", event.Type, "count", dropped)
	}
}
