package logx

import (
	"context"

	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

type contextKey int

const (
	tabKey contextKey = iota
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithTab annotates the logger with the tab id if present.
func WithTab(ctx context.Context, tabID schema.TabID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if tabID != "" {
		if current, ok := ctx.Value(tabKey).(schema.TabID); ok && current == tabID {
			return log
		}
		log = log.With("tab", tabID)
	}
	return log
}

// WithURL annotates the logger with a page url when available.
func WithURL(log pslog.Logger, url string) pslog.Logger {
	if url != "" {
		log = log.With("url", url)
	}
	return log
}

// WithNavigation annotates the logger with a navigation sequence number.
func WithNavigation(log pslog.Logger, seq schema.NavigationSeq) pslog.Logger {
	if seq > 0 {
		log = log.With("nav", uint64(seq))
	}
	return log
}

// ContextWithTab stores the tab marker on the context for log de-duplication.
func ContextWithTab(ctx context.Context, tabID schema.TabID) context.Context {
	if ctx == nil || tabID == "" {
		return ctx
	}
	return context.WithValue(ctx, tabKey, tabID)
}

// ContextWithTabLogger attaches the logger and tab marker to the context.
func ContextWithTabLogger(ctx context.Context, log pslog.Logger, tabID schema.TabID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithTab(ctx, tabID)
}

// CopyContextFields copies the tab marker from src to dst.
func CopyContextFields(dst context.Context, src context.Context) context.Context {
	if src == nil {
		return dst
	}
	if tab, ok := src.Value(tabKey).(schema.TabID); ok && tab != "" {
		dst = ContextWithTab(dst, tab)
	}
	return dst
}

// Detach returns a background context that keeps the logger and markers of ctx
// but not its cancellation. Work that outlives a request runs under it.
func Detach(ctx context.Context) context.Context {
	base := context.Background()
	if ctx == nil {
		return base
	}
	if logger := pslog.Ctx(ctx); logger != nil {
		base = pslog.ContextWithLogger(base, logger)
	}
	return CopyContextFields(base, ctx)
}
