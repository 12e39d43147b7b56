package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"pkt.systems/lumina/core"
	"pkt.systems/lumina/internal/logx"
	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

// RodSurface loads pages through go-rod, one page per tab.
type RodSurface struct {
	timeout  time.Duration
	logger   pslog.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser

	mu     sync.Mutex
	pages  map[schema.TabID]*rod.Page
	closed bool
	wg     sync.WaitGroup
}

// NewRod launches Chrome with the rod launcher and connects to it.
func NewRod(ctx context.Context, cfg Config) (*RodSurface, error) {
	cfg = normalize(ctx, cfg)
	l := launcher.New().Headless(cfg.Headless)
	if cfg.ChromePath != "" {
		l = l.Bin(cfg.ChromePath)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	cfg.Logger.Info("render rod started", "headless", cfg.Headless)
	return &RodSurface{
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		launcher: l,
		browser:  browser,
		pages:    make(map[schema.TabID]*rod.Page),
	}, nil
}

// Load navigates the tab's page in the background and signals after the load
// event with the page title.
func (r *RodSurface) Load(ctx context.Context, req schema.LoadRequest, signal core.LoadSignal) error {
	page, err := r.page(req.TabID)
	if err != nil {
		return err
	}
	log := logx.WithNavigation(logx.WithURL(logx.WithTab(ctx, req.TabID), req.URL), req.Seq).With("shield", req.ShieldEnabled)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		p := page.Timeout(r.timeout)
		defer p.CancelTimeout()
		start := time.Now()
		title, err := rodNavigate(p, req.URL)
		if err != nil {
			log.Debug("render rod load failed", "err", err, "took", time.Since(start))
		} else {
			log.Debug("render rod loaded", "title", title, "took", time.Since(start))
		}
		signal(schema.LoadResult{TabID: req.TabID, Seq: req.Seq, Title: title, Err: err})
	}()
	return nil
}

func rodNavigate(page *rod.Page, url string) (string, error) {
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.Title, nil
}

func (r *RodSurface) page(id schema.TabID) (*rod.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrSurfaceClosed
	}
	if page, ok := r.pages[id]; ok {
		return page, nil
	}
	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	r.pages[id] = page
	return page, nil
}

// Release closes the page backing a tab.
func (r *RodSurface) Release(ctx context.Context, tabID schema.TabID) {
	r.mu.Lock()
	page, ok := r.pages[tabID]
	delete(r.pages, tabID)
	r.mu.Unlock()
	if !ok {
		return
	}
	log := logx.WithTab(ctx, tabID)
	if err := page.Close(); err != nil {
		log.Debug("render rod page close failed", "err", err)
		return
	}
	log.Debug("render rod tab released")
}

// Close closes the browser and removes the launcher's profile directory.
func (r *RodSurface) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.pages = nil
	r.mu.Unlock()

	err := r.browser.Close()
	r.wg.Wait()
	r.launcher.Cleanup()
	r.logger.Info("render rod stopped")
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
