package core

import (
	"context"

	"pkt.systems/lumina/schema"
)

// LoadSignal is invoked by a render surface when a load it accepted finishes.
// It may be called from any goroutine, at most once per LoadRequest.
type LoadSignal func(result schema.LoadResult)

// RenderSurface displays pages for tabs. Load must not block until the page has
// loaded; completion is reported through signal.
type RenderSurface interface {
	Load(ctx context.Context, req schema.LoadRequest, signal LoadSignal) error
	// Release drops any per-tab resources after the tab was closed.
	Release(ctx context.Context, tabID schema.TabID)
}

// Assistant answers chat messages about the current page.
type Assistant interface {
	Reply(ctx context.Context, req schema.AssistantRequest) (string, error)
}

// instantSurface completes every load immediately. It is used when no render
// surface is configured.
type instantSurface struct{}

func (instantSurface) Load(_ context.Context, req schema.LoadRequest, signal LoadSignal) error {
	signal(schema.LoadResult{TabID: req.TabID, Seq: req.Seq})
	return nil
}

func (instantSurface) Release(context.Context, schema.TabID) {}
