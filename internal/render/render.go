// Package render provides page surfaces that load tab URLs on behalf of the
// session core and report completion through a load signal.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pkt.systems/lumina/core"
	"pkt.systems/pslog"
)

// Driver names a render surface implementation.
type Driver string

const (
	// DriverChromedp drives headless Chrome through chromedp.
	DriverChromedp Driver = "chromedp"
	// DriverRod drives Chrome through go-rod.
	DriverRod Driver = "rod"
	// DriverDelay completes every load after a fixed delay without fetching.
	DriverDelay Driver = "delay"
)

const (
	// DefaultTimeout bounds a single page load in browser drivers.
	DefaultTimeout = 30 * time.Second
	// DefaultDelay matches the fixed loading indicator of the browser shell.
	DefaultDelay = time.Second
)

// Config selects and tunes a render surface.
type Config struct {
	Driver     Driver
	Headless   bool
	ChromePath string
	Timeout    time.Duration
	Delay      time.Duration
	Logger     pslog.Logger
}

// Surface is a render surface that owns resources released by Close.
type Surface interface {
	core.RenderSurface
	Close() error
}

// ParseDriver validates a driver name from configuration.
func ParseDriver(name string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(name))) {
	case "", DriverDelay:
		return DriverDelay, nil
	case DriverChromedp, "chrome":
		return DriverChromedp, nil
	case DriverRod:
		return DriverRod, nil
	default:
		return "", fmt.Errorf("unknown render driver %q", name)
	}
}

// New starts the configured surface. Browser drivers launch Chrome before
// returning.
func New(ctx context.Context, cfg Config) (Surface, error) {
	cfg = normalize(ctx, cfg)
	switch cfg.Driver {
	case DriverChromedp:
		return NewChrome(ctx, cfg)
	case DriverRod:
		return NewRod(ctx, cfg)
	case DriverDelay:
		return NewDelay(cfg), nil
	default:
		return nil, fmt.Errorf("unknown render driver %q", cfg.Driver)
	}
}

func normalize(ctx context.Context, cfg Config) Config {
	if cfg.Driver == "" {
		cfg.Driver = DriverDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Logger == nil {
		if ctx == nil {
			ctx = context.Background()
		}
		cfg.Logger = pslog.Ctx(ctx)
	}
	cfg.Logger = cfg.Logger.With("driver", string(cfg.Driver))
	return cfg
}
