package core

import (
	"time"

	"pkt.systems/pslog"
)

// ServiceDeps captures optional dependencies for the core service.
type ServiceDeps struct {
	Surface   RenderSurface
	Assistant Assistant
	EventSink EventSink
	Logger    pslog.Logger
	// Now overrides the clock used for history and chat timestamps.
	Now func() time.Time
}
