package integration_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync"
	"testing"
	"time"

	"pkt.systems/lumina/core"
	"pkt.systems/lumina/httpapi"
	"pkt.systems/lumina/schema"
)

const fixtureTitle = "Lumina Fixture"

func requireLong(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// requireChrome returns a Chrome binary or fails the test.
func requireChrome(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Fatalf("chrome not available")
	return ""
}

// newPageServer serves a titled page at / and a second page at /other.
func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<!doctype html><html><head><title>%s</title></head><body><h1>fixture</h1></body></html>", fixtureTitle)
	})
	mux.HandleFunc("/other", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, "<!doctype html><html><head><title>Other</title></head><body>other</body></html>")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// recordingSink keeps every event for later inspection.
type recordingSink struct {
	mu     sync.Mutex
	events []schema.SessionEvent
}

func (r *recordingSink) OnSessionEvent(event schema.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) count(kind schema.SessionEventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, event := range r.events {
		if event.Type == kind {
			n++
		}
	}
	return n
}

type testEnv struct {
	service core.Service
	sink    *recordingSink
	hub     *httpapi.Hub
	http    *httptest.Server
}

func newTestEnv(t *testing.T, surface core.RenderSurface) *testEnv {
	t.Helper()
	sink := &recordingSink{}
	hub := httpapi.NewHub(64, nil)
	service, err := core.NewService(schema.ServiceConfig{}, core.ServiceDeps{
		Surface:   surface,
		EventSink: fanout{sink, hub},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	server := httptest.NewServer(httpapi.NewServer(httpapi.Config{}, service, hub).Handler())
	t.Cleanup(server.Close)
	return &testEnv{service: service, sink: sink, hub: hub, http: server}
}

type fanout []core.EventSink

func (f fanout) OnSessionEvent(event schema.SessionEvent) {
	for _, sink := range f {
		sink.OnSessionEvent(event)
	}
}

// waitIdle polls until the active tab stops loading.
func waitIdle(t *testing.T, service core.Service, timeout time.Duration) schema.TabSnapshot {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		resp, err := service.Snapshot(context.Background(), schema.SnapshotRequest{})
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		tab, ok := resp.Session.ActiveTabSnapshot()
		if !ok {
			t.Fatalf("no active tab")
		}
		if !tab.IsLoading {
			return tab
		}
		if time.Now().After(deadline) {
			t.Fatalf("tab still loading after %s: %+v", timeout, tab)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
