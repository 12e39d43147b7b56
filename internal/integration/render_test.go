package integration_test

import (
	"context"
	"net"
	"testing"
	"time"

	"pkt.systems/lumina/internal/render"
	"pkt.systems/lumina/schema"
)

func newBrowserSurface(t *testing.T, driver render.Driver) render.Surface {
	t.Helper()
	chrome := requireChrome(t)
	surface, err := render.New(context.Background(), render.Config{
		Driver:     driver,
		Headless:   true,
		ChromePath: chrome,
		Timeout:    20 * time.Second,
	})
	if err != nil {
		t.Fatalf("start %s surface: %v", driver, err)
	}
	t.Cleanup(func() { _ = surface.Close() })
	return surface
}

func TestBrowserSurfacesLoadPageTitles(t *testing.T) {
	requireLong(t)
	pages := newPageServer(t)
	for _, driver := range []render.Driver{render.DriverChromedp, render.DriverRod} {
		t.Run(string(driver), func(t *testing.T) {
			env := newTestEnv(t, newBrowserSurface(t, driver))
			ctx := context.Background()

			resp, err := env.service.Navigate(ctx, schema.NavigateRequest{Input: pages.URL})
			if err != nil {
				t.Fatalf("navigate: %v", err)
			}
			if !resp.Tab.IsLoading {
				t.Fatalf("expected optimistic loading state")
			}
			tab := waitIdle(t, env.service, 30*time.Second)
			if tab.Title != fixtureTitle {
				t.Fatalf("title = %q, want %q", tab.Title, fixtureTitle)
			}

			if _, err := env.service.Navigate(ctx, schema.NavigateRequest{Input: pages.URL + "/other"}); err != nil {
				t.Fatalf("navigate other: %v", err)
			}
			if tab := waitIdle(t, env.service, 30*time.Second); tab.Title != "Other" {
				t.Fatalf("title = %q, want Other", tab.Title)
			}
			if env.sink.count(schema.EventLoadFailed) != 0 {
				t.Fatalf("unexpected load failures")
			}
		})
	}
}

func TestChromedpSurfaceReportsUnreachableHost(t *testing.T) {
	requireLong(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	env := newTestEnv(t, newBrowserSurface(t, render.DriverChromedp))
	if _, err := env.service.Navigate(context.Background(), schema.NavigateRequest{Input: "http://" + addr}); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	waitIdle(t, env.service, 30*time.Second)
	if env.sink.count(schema.EventLoadFailed) != 1 {
		t.Fatalf("expected one load failure event")
	}
}

func TestClosingTabReleasesBrowserTarget(t *testing.T) {
	requireLong(t)
	pages := newPageServer(t)
	env := newTestEnv(t, newBrowserSurface(t, render.DriverChromedp))
	ctx := context.Background()

	added, err := env.service.AddTab(ctx, schema.AddTabRequest{})
	if err != nil {
		t.Fatalf("add tab: %v", err)
	}
	if _, err := env.service.Navigate(ctx, schema.NavigateRequest{Input: pages.URL}); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	waitIdle(t, env.service, 30*time.Second)
	closed, err := env.service.CloseTab(ctx, schema.CloseTabRequest{TabID: added.Tab.ID})
	if err != nil || !closed.Closed {
		t.Fatalf("close tab: closed=%v err=%v", closed.Closed, err)
	}
	if _, err := env.service.Navigate(ctx, schema.NavigateRequest{Input: pages.URL + "/other"}); err != nil {
		t.Fatalf("navigate remaining tab: %v", err)
	}
	if tab := waitIdle(t, env.service, 30*time.Second); tab.Title != "Other" {
		t.Fatalf("title = %q, want Other", tab.Title)
	}
}
