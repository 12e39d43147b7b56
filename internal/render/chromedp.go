package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"pkt.systems/lumina/core"
	"pkt.systems/lumina/internal/logx"
	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

// ChromeSurface loads pages in headless Chrome, one browser target per tab.
type ChromeSurface struct {
	timeout time.Duration
	logger  pslog.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	tabs   map[schema.TabID]*chromeTab
	closed bool
	wg     sync.WaitGroup
}

type chromeTab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChrome launches Chrome and waits for the first target to come up.
func NewChrome(ctx context.Context, cfg Config) (*ChromeSurface, error) {
	cfg = normalize(ctx, cfg)
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	startCtx, cancel := context.WithTimeout(browserCtx, cfg.Timeout)
	defer cancel()
	if err := chromedp.Run(startCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	cfg.Logger.Info("render chrome started", "headless", cfg.Headless)
	return &ChromeSurface{
		timeout:       cfg.Timeout,
		logger:        cfg.Logger,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		tabs:          make(map[schema.TabID]*chromeTab),
	}, nil
}

// Load navigates the tab's target in the background and signals the document
// title once the load event fired.
func (c *ChromeSurface) Load(ctx context.Context, req schema.LoadRequest, signal core.LoadSignal) error {
	tab, err := c.tab(req.TabID)
	if err != nil {
		return err
	}
	log := logx.WithNavigation(logx.WithURL(logx.WithTab(ctx, req.TabID), req.URL), req.Seq).With("shield", req.ShieldEnabled)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		runCtx, cancel := context.WithTimeout(tab.ctx, c.timeout)
		defer cancel()
		var title string
		start := time.Now()
		err := chromedp.Run(runCtx,
			chromedp.Navigate(req.URL),
			chromedp.Title(&title),
		)
		if err != nil {
			log.Debug("render chrome load failed", "err", err, "took", time.Since(start))
		} else {
			log.Debug("render chrome loaded", "title", title, "took", time.Since(start))
		}
		signal(schema.LoadResult{TabID: req.TabID, Seq: req.Seq, Title: title, Err: err})
	}()
	return nil
}

func (c *ChromeSurface) tab(id schema.TabID) (*chromeTab, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrSurfaceClosed
	}
	if tab, ok := c.tabs[id]; ok {
		return tab, nil
	}
	ctx, cancel := chromedp.NewContext(c.browserCtx)
	tab := &chromeTab{ctx: ctx, cancel: cancel}
	c.tabs[id] = tab
	return tab, nil
}

// Release closes the target backing a tab.
func (c *ChromeSurface) Release(ctx context.Context, tabID schema.TabID) {
	c.mu.Lock()
	tab, ok := c.tabs[tabID]
	delete(c.tabs, tabID)
	c.mu.Unlock()
	if !ok {
		return
	}
	tab.cancel()
	logx.WithTab(ctx, tabID).Debug("render chrome tab released")
}

// Close shuts down every target and the browser process.
func (c *ChromeSurface) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	tabs := c.tabs
	c.tabs = nil
	c.mu.Unlock()

	for _, tab := range tabs {
		tab.cancel()
	}
	c.wg.Wait()
	c.browserCancel()
	c.allocCancel()
	c.logger.Info("render chrome stopped")
	return nil
}
