package lumina

import (
	"context"
	"errors"
	"testing"
	"time"

	"pkt.systems/lumina/core"
	"pkt.systems/lumina/schema"
)

func TestNewRequiresAService(t *testing.T) {
	if _, err := New(ServerConfig{}, ServerDeps{}); err == nil {
		t.Fatalf("expected error when no services are enabled")
	}
}

func TestNewRejectsInvalidServiceConfig(t *testing.T) {
	cfg := ServerConfig{Service: schema.ServiceConfig{SearchURL: "https://example.com/search"}}
	_, err := New(cfg, ServerDeps{}, WithEventBus())
	if !errors.Is(err, schema.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestEventBusReceivesServiceEvents(t *testing.T) {
	srv, err := New(ServerConfig{}, ServerDeps{}, WithEventBus())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events, cancel := srv.Events().Subscribe(schema.EventShield)
	defer cancel()
	resp, err := srv.Service().ToggleShield(context.Background(), schema.ToggleShieldRequest{})
	if err != nil {
		t.Fatalf("ToggleShield: %v", err)
	}
	select {
	case event := <-events:
		if event.ShieldEnabled != resp.Enabled {
			t.Fatalf("event shield = %v, want %v", event.ShieldEnabled, resp.Enabled)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for shield event")
	}
}

func TestFanoutKeepsExistingSink(t *testing.T) {
	sink := &countingSink{}
	srv, err := New(ServerConfig{}, ServerDeps{ServiceDeps: core.ServiceDeps{EventSink: sink}}, WithEventBus())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := srv.Service().AddTab(context.Background(), schema.AddTabRequest{}); err != nil {
		t.Fatalf("AddTab: %v", err)
	}
	if sink.count == 0 {
		t.Fatalf("expected caller sink to receive events")
	}
}

func TestStopCancelsAndRunsClosers(t *testing.T) {
	closed := 0
	srv, err := New(ServerConfig{}, ServerDeps{Closers: []func() error{
		func() error { closed++; return nil },
	}}, WithEventBus())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := srv.Start(context.Background()); err == nil {
		t.Fatalf("expected second Start to fail")
	}
	waitErr := make(chan error, 1)
	go func() { waitErr <- srv.Wait() }()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case err := <-waitErr:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Wait did not return after Stop")
	}
	if closed != 1 {
		t.Fatalf("expected closer to run once, got %d", closed)
	}
}

func TestWaitBeforeStart(t *testing.T) {
	srv, err := New(ServerConfig{}, ServerDeps{}, WithEventBus())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Wait(); err == nil {
		t.Fatalf("expected Wait to fail before Start")
	}
}

type countingSink struct {
	count int
}

func (c *countingSink) OnSessionEvent(schema.SessionEvent) {
	c.count++
}
