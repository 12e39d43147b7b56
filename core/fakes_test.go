package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"pkt.systems/lumina/schema"
)

// manualSurface records loads and lets tests fire completions by hand.
type manualSurface struct {
	mu       sync.Mutex
	loads    []schema.LoadRequest
	signals  []LoadSignal
	released []schema.TabID
	ctxs     []context.Context
	err      error
}

func (m *manualSurface) Load(ctx context.Context, req schema.LoadRequest, signal LoadSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxs = append(m.ctxs, ctx)
	if m.err != nil {
		return m.err
	}
	m.loads = append(m.loads, req)
	m.signals = append(m.signals, signal)
	return nil
}

func (m *manualSurface) Release(_ context.Context, tabID schema.TabID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = append(m.released, tabID)
}

// fire completes the i-th recorded load.
func (m *manualSurface) fire(t *testing.T, i int, err error) {
	t.Helper()
	m.mu.Lock()
	if i >= len(m.loads) {
		m.mu.Unlock()
		t.Fatalf("no load at index %d (have %d)", i, len(m.loads))
	}
	req := m.loads[i]
	signal := m.signals[i]
	m.mu.Unlock()
	signal(schema.LoadResult{TabID: req.TabID, Seq: req.Seq, Err: err})
}

func (m *manualSurface) lastLoad(t *testing.T) schema.LoadRequest {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.loads) == 0 {
		t.Fatalf("expected a load request")
	}
	return m.loads[len(m.loads)-1]
}

type captureSink struct {
	mu     sync.Mutex
	events []schema.SessionEvent
}

func (c *captureSink) OnSessionEvent(event schema.SessionEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) types() []schema.SessionEventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]schema.SessionEventType, 0, len(c.events))
	for _, event := range c.events {
		out = append(out, event.Type)
	}
	return out
}

type fakeAssistant struct {
	reply string
	err   error
	got   []schema.AssistantRequest
	block chan struct{}
}

func (f *fakeAssistant) Reply(_ context.Context, req schema.AssistantRequest) (string, error) {
	f.got = append(f.got, req)
	if f.block != nil {
		<-f.block
	}
	return f.reply, f.err
}

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestService(t *testing.T, deps ServiceDeps) *service {
	t.Helper()
	svc, err := NewService(schema.ServiceConfig{}, deps)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}

func snapshot(t *testing.T, svc Service) schema.SessionSnapshot {
	t.Helper()
	resp, err := svc.Snapshot(context.Background(), schema.SnapshotRequest{})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return resp.Session
}

func activeTab(t *testing.T, svc Service) schema.TabSnapshot {
	t.Helper()
	session := snapshot(t, svc)
	tab, ok := session.ActiveTabSnapshot()
	if !ok {
		t.Fatalf("active tab %q not in %+v", session.ActiveTab, session.Tabs)
	}
	return tab
}
