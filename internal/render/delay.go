package render

import (
	"context"
	"sync"
	"time"

	"pkt.systems/lumina/core"
	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

// DelaySurface reports every load as complete after a fixed delay. It never
// touches the network and is the default surface for the terminal shell.
type DelaySurface struct {
	delay  time.Duration
	logger pslog.Logger

	mu     sync.Mutex
	timers map[schema.TabID][]*time.Timer
	closed bool
}

// NewDelay builds a delay surface. A zero delay in cfg is kept as zero.
func NewDelay(cfg Config) *DelaySurface {
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &DelaySurface{
		delay:  cfg.Delay,
		logger: logger,
		timers: make(map[schema.TabID][]*time.Timer),
	}
}

// Load arms a timer that signals completion for req.
func (d *DelaySurface) Load(_ context.Context, req schema.LoadRequest, signal core.LoadSignal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrSurfaceClosed
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		tracked := d.forgetLocked(req.TabID, timer)
		d.mu.Unlock()
		if !tracked {
			return
		}
		signal(schema.LoadResult{TabID: req.TabID, Seq: req.Seq})
	})
	d.timers[req.TabID] = append(d.timers[req.TabID], timer)
	d.logger.Trace("render delay armed", "tab", req.TabID, "nav", req.Seq, "delay", d.delay)
	return nil
}

// forgetLocked removes a fired timer and reports whether it was still tracked.
// The timer is read under d.mu so it is set even for a zero delay.
func (d *DelaySurface) forgetLocked(tabID schema.TabID, timer *time.Timer) bool {
	timers := d.timers[tabID]
	for i, current := range timers {
		if current == timer {
			timers = append(timers[:i], timers[i+1:]...)
			if len(timers) == 0 {
				delete(d.timers, tabID)
			} else {
				d.timers[tabID] = timers
			}
			return true
		}
	}
	return false
}

// Release stops pending completions for a closed tab.
func (d *DelaySurface) Release(_ context.Context, tabID schema.TabID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, timer := range d.timers[tabID] {
		timer.Stop()
	}
	delete(d.timers, tabID)
}

// Pending reports how many loads have not fired yet.
func (d *DelaySurface) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, timers := range d.timers {
		n += len(timers)
	}
	return n
}

// Close stops all pending timers. Later loads fail with ErrSurfaceClosed.
func (d *DelaySurface) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, timers := range d.timers {
		for _, timer := range timers {
			timer.Stop()
		}
		delete(d.timers, id)
	}
	d.closed = true
	return nil
}
