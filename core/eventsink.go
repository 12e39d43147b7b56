package core

import "pkt.systems/lumina/schema"

// EventSink receives session events from the core service.
type EventSink interface {
	OnSessionEvent(event schema.SessionEvent)
}
