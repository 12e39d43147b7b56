package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pkt.systems/lumina/internal/logx"
	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

var errMissingContext = errors.New("missing context")

// service implements the session controller.
type service struct {
	cfg       schema.ServiceConfig
	resolver  Resolver
	surface   RenderSurface
	assistant Assistant
	sink      EventSink
	logger    pslog.Logger
	now       func() time.Time
	mu        sync.Mutex
	state     *sessionState
}

// sessionState is everything a session owns. Guarded by service.mu.
type sessionState struct {
	tabs      *registry
	history   *historyList
	bookmarks *bookmarkSet
	chat      *chatLog
	panel     schema.SidebarPanel
	shield    bool
	// revision counts applied mutations; events and snapshots carry it.
	revision uint64
}

func (st *sessionState) bump() uint64 {
	st.revision++
	return st.revision
}

func newSessionState(cfg schema.ServiceConfig) *sessionState {
	return &sessionState{
		tabs:      newRegistry(cfg.DefaultURL, cfg.NewTabURL),
		history:   newHistory(cfg.HistoryMax),
		bookmarks: &bookmarkSet{},
		chat:      &chatLog{},
		panel:     schema.PanelNone,
		shield:    !cfg.DisableShield,
	}
}

// NewService constructs a session with a single tab at cfg.DefaultURL.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	if deps.Surface == nil {
		deps.Surface = instantSurface{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	s := &service{
		cfg:       cfg,
		resolver:  NewResolver(cfg.SearchURL),
		surface:   deps.Surface,
		assistant: deps.Assistant,
		sink:      deps.EventSink,
		logger:    logger,
		now:       now,
		state:     newSessionState(cfg),
	}
	initial := s.state.tabs.activeTab()
	logx.WithURL(s.logger.With("tab", initial.ID), initial.URL).Info("session start", "shield", s.state.shield)
	return s, nil
}

func (s *service) AddTab(ctx context.Context, req schema.AddTabRequest) (schema.AddTabResponse, error) {
	_ = ctx
	_ = req
	s.mu.Lock()
	tabs := s.state.tabs
	id := tabs.add()
	tabs.activate(id)
	snap := tabs.get(id).Snapshot(true)
	count := tabs.len()
	rev := s.state.bump()
	s.mu.Unlock()

	s.emit(schema.SessionEvent{Type: schema.EventTabCreated, Revision: rev, Tab: &snap, ActiveTab: id})
	logx.WithURL(s.logger.With("tab", id), snap.URL).Info("session tab created", "tabs", count)
	return schema.AddTabResponse{Tab: snap}, nil
}

func (s *service) CloseTab(ctx context.Context, req schema.CloseTabRequest) (schema.CloseTabResponse, error) {
	log := s.logger.With("tab", req.TabID)

	s.mu.Lock()
	tabs := s.state.tabs
	closing := tabs.get(req.TabID)
	wasActive := tabs.active == req.TabID
	if closing == nil || !tabs.close(req.TabID) {
		active := tabs.active
		count := tabs.len()
		s.mu.Unlock()
		reason := "last tab"
		if closing == nil {
			reason = "unknown tab"
		}
		log.Debug("session tab close ignored", "reason", reason, "tabs", count)
		return schema.CloseTabResponse{Closed: false, ActiveTab: active}, nil
	}
	closed := closing.Snapshot(false)
	active := tabs.active
	activeSnap := tabs.activeTab().Snapshot(true)
	count := tabs.len()
	rev := s.state.bump()
	s.mu.Unlock()

	s.emit(schema.SessionEvent{Type: schema.EventTabClosed, Revision: rev, Tab: &closed, ActiveTab: active})
	if wasActive {
		s.emit(schema.SessionEvent{Type: schema.EventTabActivated, Revision: rev, Tab: &activeSnap, ActiveTab: active})
	}
	if ctx != nil {
		s.surface.Release(s.tabContext(ctx, req.TabID), req.TabID)
	}
	log.Info("session tab closed", "active", active, "tabs", count)
	return schema.CloseTabResponse{Closed: true, ActiveTab: active}, nil
}

func (s *service) ActivateTab(ctx context.Context, req schema.ActivateTabRequest) (schema.ActivateTabResponse, error) {
	_ = ctx
	log := s.logger.With("tab", req.TabID)

	s.mu.Lock()
	tabs := s.state.tabs
	if !tabs.activate(req.TabID) {
		s.mu.Unlock()
		log.Warn("session tab activate failed", "err", schema.ErrTabNotFound)
		return schema.ActivateTabResponse{}, schema.ErrTabNotFound
	}
	snap := tabs.activeTab().Snapshot(true)
	rev := s.state.bump()
	s.mu.Unlock()

	s.emit(schema.SessionEvent{Type: schema.EventTabActivated, Revision: rev, Tab: &snap, ActiveTab: snap.ID})
	log.Info("session tab activated")
	return schema.ActivateTabResponse{Tab: snap}, nil
}

func (s *service) Navigate(ctx context.Context, req schema.NavigateRequest) (schema.NavigateResponse, error) {
	if ctx == nil {
		return schema.NavigateResponse{}, errMissingContext
	}
	resolved := s.resolver.Resolve(req.Input)
	return s.navigate(ctx, func(*tab) string { return resolved })
}

func (s *service) Reload(ctx context.Context, req schema.ReloadRequest) (schema.NavigateResponse, error) {
	_ = req
	if ctx == nil {
		return schema.NavigateResponse{}, errMissingContext
	}
	return s.navigate(ctx, func(active *tab) string { return active.URL })
}

// navigate moves the active tab to Loading at the url target picks for it,
// records the visit, and hands the page to the render surface. target runs
// under the same lock as the transition.
func (s *service) navigate(ctx context.Context, target func(*tab) string) (schema.NavigateResponse, error) {
	s.mu.Lock()
	active := s.state.tabs.activeTab()
	resolved := target(active)
	seq, _ := s.state.tabs.begin(active.ID, resolved)
	item := s.state.history.Record(resolved, active.Title, s.now())
	snap := active.Snapshot(true)
	shield := s.state.shield
	rev := s.state.bump()
	s.mu.Unlock()

	log := logx.WithNavigation(logx.WithURL(s.logger.With("tab", snap.ID), resolved), seq)
	s.emit(schema.SessionEvent{Type: schema.EventTabUpdated, Revision: rev, Tab: &snap, ActiveTab: snap.ID})
	s.emit(schema.SessionEvent{Type: schema.EventHistory, Revision: rev, History: &item})
	log.Info("session navigate", "shield", shield)

	load := schema.LoadRequest{TabID: snap.ID, Seq: seq, URL: resolved, ShieldEnabled: shield}
	if err := s.surface.Load(s.tabContext(ctx, snap.ID), load, s.loadSignal(ctx)); err != nil {
		log.Warn("session load rejected", "err", err)
		_, _ = s.CompleteLoad(ctx, schema.CompleteLoadRequest{TabID: snap.ID, Seq: seq, Failure: err.Error()})
	}
	return schema.NavigateResponse{Tab: snap, Seq: seq, History: item}, nil
}

// tabContext detaches ctx for surface work and binds the session logger with
// the tab marker, so surfaces logging through logx.WithTab do not repeat it.
func (s *service) tabContext(ctx context.Context, tabID schema.TabID) context.Context {
	return logx.ContextWithTabLogger(logx.Detach(ctx), s.logger.With("tab", tabID), tabID)
}

func (s *service) loadSignal(ctx context.Context) LoadSignal {
	detached := logx.Detach(ctx)
	return func(result schema.LoadResult) {
		req := schema.CompleteLoadRequest{TabID: result.TabID, Seq: result.Seq, Title: result.Title}
		if result.Err != nil {
			req.Failure = result.Err.Error()
		}
		_, _ = s.CompleteLoad(detached, req)
	}
}

func (s *service) CompleteLoad(ctx context.Context, req schema.CompleteLoadRequest) (schema.CompleteLoadResponse, error) {
	_ = ctx
	log := logx.WithNavigation(s.logger.With("tab", req.TabID), req.Seq)

	s.mu.Lock()
	tabs := s.state.tabs
	applied := tabs.complete(req.TabID, req.Seq, req.Title)
	var snap schema.TabSnapshot
	var rev uint64
	if applied {
		snap = tabs.get(req.TabID).Snapshot(tabs.active == req.TabID)
		rev = s.state.bump()
	}
	active := tabs.active
	s.mu.Unlock()

	if !applied {
		log.Debug("session load completion ignored")
		return schema.CompleteLoadResponse{Applied: false}, nil
	}
	if req.Failure != "" {
		s.emit(schema.SessionEvent{Type: schema.EventLoadFailed, Revision: rev, Tab: &snap, ActiveTab: active, Error: req.Failure})
		logx.WithURL(log, snap.URL).Warn("session load failed", "err", req.Failure)
	}
	s.emit(schema.SessionEvent{Type: schema.EventTabUpdated, Revision: rev, Tab: &snap, ActiveTab: active})
	logx.WithURL(log, snap.URL).Info("session load complete", "title", snap.Title)
	return schema.CompleteLoadResponse{Applied: true}, nil
}

func (s *service) ToggleBookmark(ctx context.Context, req schema.ToggleBookmarkRequest) (schema.ToggleBookmarkResponse, error) {
	_ = ctx
	_ = req
	s.mu.Lock()
	active := s.state.tabs.activeTab()
	bookmark, added := s.state.bookmarks.Toggle(active.URL, active.Title)
	count := len(s.state.bookmarks.entries)
	rev := s.state.bump()
	s.mu.Unlock()

	s.emit(schema.SessionEvent{Type: schema.EventBookmarks, Revision: rev, Bookmark: &bookmark, BookmarkAdded: added})
	logx.WithURL(s.logger, bookmark.URL).Info("session bookmark toggled", "added", added, "bookmarks", count)
	return schema.ToggleBookmarkResponse{Added: added, Bookmark: bookmark}, nil
}

func (s *service) ClearHistory(ctx context.Context, req schema.ClearHistoryRequest) (schema.ClearHistoryResponse, error) {
	_ = ctx
	_ = req
	s.mu.Lock()
	removed := s.state.history.Clear()
	rev := s.state.bump()
	s.mu.Unlock()

	s.emit(schema.SessionEvent{Type: schema.EventHistory, Revision: rev})
	s.logger.Info("session history cleared", "removed", removed)
	return schema.ClearHistoryResponse{Removed: removed}, nil
}

func (s *service) TogglePanel(ctx context.Context, req schema.TogglePanelRequest) (schema.TogglePanelResponse, error) {
	_ = ctx
	if !req.Panel.Valid() {
		s.logger.Warn("session panel toggle failed", "panel", req.Panel, "err", schema.ErrInvalidPanel)
		return schema.TogglePanelResponse{}, schema.ErrInvalidPanel
	}
	s.mu.Lock()
	previous := s.state.panel
	s.state.panel = nextPanel(previous, req.Panel)
	panel := s.state.panel
	rev := s.state.bump()
	s.mu.Unlock()

	s.emit(schema.SessionEvent{Type: schema.EventPanel, Revision: rev, Panel: panel})
	s.logger.Debug("session panel toggled", "from", previous, "to", panel)
	return schema.TogglePanelResponse{Panel: panel}, nil
}

func (s *service) ClosePanel(ctx context.Context, req schema.ClosePanelRequest) (schema.TogglePanelResponse, error) {
	_ = ctx
	_ = req
	s.mu.Lock()
	previous := s.state.panel
	s.state.panel = schema.PanelNone
	var rev uint64
	if previous != schema.PanelNone {
		rev = s.state.bump()
	}
	s.mu.Unlock()

	if previous != schema.PanelNone {
		s.emit(schema.SessionEvent{Type: schema.EventPanel, Revision: rev, Panel: schema.PanelNone})
	}
	s.logger.Debug("session panel closed", "from", previous)
	return schema.TogglePanelResponse{Panel: schema.PanelNone}, nil
}

func (s *service) ToggleShield(ctx context.Context, req schema.ToggleShieldRequest) (schema.ToggleShieldResponse, error) {
	_ = ctx
	_ = req
	s.mu.Lock()
	s.state.shield = !s.state.shield
	enabled := s.state.shield
	rev := s.state.bump()
	s.mu.Unlock()

	s.emit(schema.SessionEvent{Type: schema.EventShield, Revision: rev, ShieldEnabled: enabled})
	s.logger.Info("session shield toggled", "enabled", enabled)
	return schema.ToggleShieldResponse{Enabled: enabled}, nil
}

func (s *service) SendChat(ctx context.Context, req schema.SendChatRequest) (schema.SendChatResponse, error) {
	if ctx == nil {
		return schema.SendChatResponse{}, errMissingContext
	}
	if strings.TrimSpace(req.Text) == "" {
		return schema.SendChatResponse{}, schema.ErrEmptyMessage
	}

	s.mu.Lock()
	chat := s.state.chat
	if chat.busy {
		s.mu.Unlock()
		s.logger.Warn("session chat rejected", "err", schema.ErrAssistantBusy)
		return schema.SendChatResponse{}, schema.ErrAssistantBusy
	}
	chat.busy = true
	question := chat.append(schema.ChatRoleUser, req.Text, s.now())
	pageURL := s.state.tabs.activeTab().URL
	rev := s.state.bump()
	s.mu.Unlock()

	log := logx.WithURL(s.logger, pageURL).With("text_len", len(req.Text))
	s.emit(schema.SessionEvent{Type: schema.EventChat, Revision: rev, Message: &question, AssistantBusy: true})
	log.Info("session chat start")

	text, err := s.ask(ctx, schema.AssistantRequest{PageURL: pageURL, UserText: req.Text})
	failed := false
	switch {
	case err != nil:
		log.Warn("session chat failed", "err", err)
		text = ChatFailureReply
		failed = true
	case strings.TrimSpace(text) == "":
		text = ChatEmptyReply
	}

	s.mu.Lock()
	reply := chat.append(schema.ChatRoleAssistant, text, s.now())
	chat.busy = false
	rev = s.state.bump()
	s.mu.Unlock()

	s.emit(schema.SessionEvent{Type: schema.EventChat, Revision: rev, Message: &reply, AssistantBusy: false})
	log.Info("session chat done", "failed", failed, "reply_len", len(text))
	return schema.SendChatResponse{Reply: reply, Failed: failed}, nil
}

func (s *service) ask(ctx context.Context, req schema.AssistantRequest) (string, error) {
	if s.assistant == nil {
		return "", schema.ErrAssistantUnavailable
	}
	return s.assistant.Reply(ctx, req)
}

func (s *service) Snapshot(ctx context.Context, req schema.SnapshotRequest) (schema.SnapshotResponse, error) {
	_ = ctx
	_ = req
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	active := state.tabs.activeTab()
	session := schema.SessionSnapshot{
		Tabs:          state.tabs.snapshots(),
		ActiveTab:     active.ID,
		History:       state.history.Entries(),
		Bookmarks:     state.bookmarks.Entries(),
		IsBookmarked:  state.bookmarks.Contains(active.URL),
		Panel:         state.panel,
		ShieldEnabled: state.shield,
		Chat:          state.chat.Messages(),
		AssistantBusy: state.chat.busy,
		Revision:      state.revision,
	}
	s.logger.Trace("session snapshot", "tabs", len(session.Tabs), "history", len(session.History))
	return schema.SnapshotResponse{Session: session}, nil
}

func (s *service) emit(event schema.SessionEvent) {
	if s.sink == nil {
		return
	}
	s.sink.OnSessionEvent(event)
}
