package lumina

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"pkt.systems/lumina/core"
	"pkt.systems/lumina/httpapi"
	"pkt.systems/lumina/internal/eventbus"
	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

// Server composes the session core with its transports.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
	// Service returns the session controller shared by all transports.
	Service() core.Service
	// Events returns the in-process event bus, or nil when disabled.
	Events() *eventbus.Bus
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Service    schema.ServiceConfig
	HTTP       httpapi.Config
	HubHistory int
}

// ServerDeps captures dependencies required to build the server.
type ServerDeps struct {
	ServiceDeps core.ServiceDeps
	// Closers run on Stop after the transports have shut down, in order.
	Closers []func() error
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableHTTP bool
	enableBus  bool
}

// WithHTTP enables the HTTP API server.
func WithHTTP() ServerOption {
	return func(o *serverOptions) { o.enableHTTP = true }
}

// WithEventBus enables the in-process event bus used by the terminal shell.
func WithEventBus() ServerOption {
	return func(o *serverOptions) { o.enableBus = true }
}

// New constructs a composable lumina server.
func New(cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.enableHTTP && !options.enableBus {
		return nil, errors.New("no services enabled")
	}
	normalized, err := schema.NormalizeServiceConfig(cfg.Service)
	if err != nil {
		return nil, err
	}
	cfg.Service = normalized

	serviceDeps := deps.ServiceDeps
	var hub *httpapi.Hub
	var bus *eventbus.Bus
	if options.enableHTTP {
		hub = httpapi.NewHub(cfg.HubHistory, serviceDeps.Logger)
	}
	if options.enableBus {
		bus = eventbus.New(serviceDeps.Logger)
	}
	serviceDeps.EventSink = fanoutSinks(serviceDeps.EventSink, hub, bus)

	service, err := core.NewService(cfg.Service, serviceDeps)
	if err != nil {
		return nil, err
	}

	var httpSrv *httpapi.Server
	if options.enableHTTP {
		httpSrv = httpapi.NewServer(cfg.HTTP, service, hub)
	}

	return &compositeServer{
		cfg:     cfg,
		options: options,
		service: service,
		httpSrv: httpSrv,
		bus:     bus,
		closers: deps.Closers,
	}, nil
}

func fanoutSinks(base core.EventSink, hub *httpapi.Hub, bus *eventbus.Bus) core.EventSink {
	sinks := make([]core.EventSink, 0, 3)
	if base != nil {
		sinks = append(sinks, base)
	}
	if hub != nil {
		sinks = append(sinks, hub)
	}
	if bus != nil {
		sinks = append(sinks, bus)
	}
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		return eventFanout{sinks: sinks}
	}
}

type compositeServer struct {
	cfg     ServerConfig
	options serverOptions
	service core.Service
	httpSrv *httpapi.Server
	bus     *eventbus.Bus
	closers []func() error
	logger  pslog.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	group     *errgroup.Group
	started   bool
	closeOnce sync.Once
}

func (s *compositeServer) Service() core.Service { return s.service }

func (s *compositeServer) Events() *eventbus.Bus { return s.bus }

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)
	s.ctx, s.cancel, s.group = groupCtx, cancel, group
	s.started = true
	s.logger = pslog.Ctx(groupCtx)
	s.mu.Unlock()

	log := s.logger
	log.Info(
		"server start",
		"http", s.options.enableHTTP,
		"bus", s.options.enableBus,
		"http_addr", s.cfg.HTTP.Addr,
		"http_base_path", s.cfg.HTTP.BasePath,
	)
	if s.options.enableHTTP && s.httpSrv != nil {
		group.Go(func() error {
			if err := httpapi.ListenAndServe(groupCtx, s.cfg.HTTP.Addr, s.httpSrv.Handler()); err != nil {
				log.Error("http server failed", "err", err)
				return err
			}
			return nil
		})
	}
	// Holds the group open until Stop so Wait blocks for the server's lifetime.
	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})
	return nil
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	group := s.group
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}
	err := group.Wait()
	s.runClosers()
	if err != nil {
		pslog.Ctx(s.ctx).Error("server stopped", "err", err)
		return err
	}
	return nil
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	group := s.group
	started := s.started
	log := s.logger
	s.mu.Unlock()
	if !started {
		s.runClosers()
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("server stop requested")
	cancel()
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-done:
		s.runClosers()
		log.Info("server stopped")
		return nil
	}
}

func (s *compositeServer) runClosers() {
	s.closeOnce.Do(func() {
		log := s.logger
		if log == nil {
			log = pslog.Ctx(context.Background())
		}
		for _, closeFn := range s.closers {
			if closeFn == nil {
				continue
			}
			if err := closeFn(); err != nil {
				log.Warn("server close failed", "err", err)
			}
		}
	})
}
