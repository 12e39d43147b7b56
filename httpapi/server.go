package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pkt.systems/lumina/core"
	"pkt.systems/lumina/internal/logx"
	"pkt.systems/lumina/schema"
)

// Server serves the session JSON API and event stream.
type Server struct {
	cfg      Config
	service  core.Service
	hub      *Hub
	basePath string
}

// NewServer constructs an HTTP server.
func NewServer(cfg Config, service core.Service, hub *Hub) *Server {
	return &Server{
		cfg:      cfg,
		service:  service,
		hub:      hub,
		basePath: normalizeBasePath(cfg.BasePath),
	}
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/tabs", s.handleTabs)
	mux.HandleFunc("/api/tabs/activate", s.handleActivate)
	mux.HandleFunc("/api/tabs/close", s.handleClose)
	mux.HandleFunc("/api/navigate", s.handleNavigate)
	mux.HandleFunc("/api/reload", s.handleReload)
	mux.HandleFunc("/api/load-complete", s.handleLoadComplete)
	mux.HandleFunc("/api/bookmark", s.handleBookmark)
	mux.HandleFunc("/api/history/clear", s.handleClearHistory)
	mux.HandleFunc("/api/panel", s.handlePanel)
	mux.HandleFunc("/api/shield", s.handleShield)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/stream", s.handleStream)

	handler := withRequestLogging(mux)
	if s.basePath == "" {
		return handler
	}
	prefix := s.basePath
	root := http.NewServeMux()
	root.Handle(prefix+"/", http.StripPrefix(prefix, handler))
	return root
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	resp, err := s.service.Snapshot(r.Context(), schema.SnapshotRequest{})
	if err != nil {
		log.Warn("http session failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Session)
	log.Debug("http session ok", "tabs", len(resp.Session.Tabs))
}

func (s *Server) handleTabs(w http.ResponseWriter, r *http.Request) {
	log := logx.Ctx(r.Context())
	switch r.Method {
	case http.MethodGet:
		resp, err := s.service.Snapshot(r.Context(), schema.SnapshotRequest{})
		if err != nil {
			log.Warn("http tabs list failed", "err", err)
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"tabs":       resp.Session.Tabs,
			"active_tab": resp.Session.ActiveTab,
		})
		log.Info("http tabs list ok", "count", len(resp.Session.Tabs))
	case http.MethodPost:
		resp, err := s.service.AddTab(r.Context(), schema.AddTabRequest{})
		if err != nil {
			log.Warn("http tabs create failed", "err", err)
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		log.Info("http tabs create ok", "tab", resp.Tab.ID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type tabPayload struct {
	TabID string `json:"tab_id"`
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	var payload tabPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		log.Warn("http activate decode failed", "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	log = log.With("tab", payload.TabID)
	resp, err := s.service.ActivateTab(r.Context(), schema.ActivateTabRequest{TabID: schema.TabID(payload.TabID)})
	if err != nil {
		log.Warn("http activate failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	log.Info("http activate ok")
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	var payload tabPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		log.Warn("http close decode failed", "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	log = log.With("tab", payload.TabID)
	resp, err := s.service.CloseTab(r.Context(), schema.CloseTabRequest{TabID: schema.TabID(payload.TabID)})
	if err != nil {
		log.Warn("http close failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	log.Info("http close ok", "closed", resp.Closed, "active", resp.ActiveTab)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	var payload struct {
		Input string `json:"input"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		log.Warn("http navigate decode failed", "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.service.Navigate(r.Context(), schema.NavigateRequest{Input: payload.Input})
	if err != nil {
		log.Warn("http navigate failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	logx.WithURL(log.With("tab", resp.Tab.ID), resp.Tab.URL).Info("http navigate ok", "input_len", len(payload.Input))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	resp, err := s.service.Reload(r.Context(), schema.ReloadRequest{})
	if err != nil {
		log.Warn("http reload failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	log.Info("http reload ok", "tab", resp.Tab.ID)
}

// handleLoadComplete lets an external render surface report a finished load.
func (s *Server) handleLoadComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	var payload struct {
		TabID string `json:"tab_id"`
		Seq   uint64 `json:"seq"`
		Title string `json:"title"`
		Error string `json:"error"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		log.Warn("http load-complete decode failed", "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.service.CompleteLoad(r.Context(), schema.CompleteLoadRequest{
		TabID:   schema.TabID(payload.TabID),
		Seq:     schema.NavigationSeq(payload.Seq),
		Title:   payload.Title,
		Failure: payload.Error,
	})
	if err != nil {
		log.Warn("http load-complete failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	log.Debug("http load-complete ok", "tab", payload.TabID, "applied", resp.Applied)
}

func (s *Server) handleBookmark(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	resp, err := s.service.ToggleBookmark(r.Context(), schema.ToggleBookmarkRequest{})
	if err != nil {
		log.Warn("http bookmark failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	log.Info("http bookmark ok", "added", resp.Added)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	resp, err := s.service.ClearHistory(r.Context(), schema.ClearHistoryRequest{})
	if err != nil {
		log.Warn("http history clear failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	log.Info("http history clear ok", "removed", resp.Removed)
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	var payload struct {
		Panel string `json:"panel"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		log.Warn("http panel decode failed", "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	panel, err := schema.ParsePanel(payload.Panel)
	if err != nil {
		log.Warn("http panel rejected", "panel", payload.Panel, "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	var resp schema.TogglePanelResponse
	if panel == schema.PanelNone {
		resp, err = s.service.ClosePanel(r.Context(), schema.ClosePanelRequest{})
	} else {
		resp, err = s.service.TogglePanel(r.Context(), schema.TogglePanelRequest{Panel: panel})
	}
	if err != nil {
		log.Warn("http panel failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	log.Info("http panel ok", "panel", resp.Panel)
}

func (s *Server) handleShield(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	resp, err := s.service.ToggleShield(r.Context(), schema.ToggleShieldRequest{})
	if err != nil {
		log.Warn("http shield failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	log.Info("http shield ok", "enabled", resp.Enabled)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	var payload struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		log.Warn("http chat decode failed", "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.service.SendChat(r.Context(), schema.SendChatRequest{Text: payload.Text})
	if err != nil {
		log.Warn("http chat failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	log.Info("http chat ok", "failed", resp.Failed)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("stream unsupported"))
		return
	}
	log := logx.Ctx(r.Context())
	if s.hub == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("stream unavailable"))
		return
	}

	ch, unsubscribe, seq := s.hub.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	lastID := parseUint(r.Header.Get("Last-Event-ID"))
	replayCount := 0
	resync := lastID == 0
	if lastID > 0 {
		replay, complete := s.hub.Replay(lastID, seq)
		if complete {
			replayCount = len(replay)
			for _, event := range replay {
				_ = writeSSEvent(w, event)
			}
		} else {
			log.Info("http stream replay incomplete", "last_id", lastID, "seq", seq)
			resync = true
		}
	}
	// Live events at or below the snapshot revision are already part of it.
	var applied uint64
	if resync {
		snapshot, err := s.service.Snapshot(r.Context(), schema.SnapshotRequest{})
		if err != nil {
			log.Warn("http stream snapshot failed", "err", err)
		} else {
			applied = snapshot.Session.Revision
			_ = writeSSEvent(w, StreamEvent{
				Type:      streamTypeSnapshot,
				Snapshot:  &snapshot.Session,
				Timestamp: time.Now(),
			})
		}
	}
	flusher.Flush()

	notify := r.Context().Done()
	log.Info("http stream opened", "last_id", lastID, "replay", replayCount, "resync", resync)
	for {
		select {
		case <-notify:
			log.Info("http stream closed")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Event != nil && event.Event.Revision <= applied {
				continue
			}
			_ = writeSSEvent(w, event)
			flusher.Flush()
		}
	}
}

// statusFor maps session errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, schema.ErrTabNotFound):
		return http.StatusNotFound
	case errors.Is(err, schema.ErrInvalidPanel), errors.Is(err, schema.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, schema.ErrAssistantBusy):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(body io.Reader, target any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeSSEvent(w http.ResponseWriter, event StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if event.Seq > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", event.Seq)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", strings.TrimSpace(string(data)))
	return nil
}

func parseUint(value string) uint64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
