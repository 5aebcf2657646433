package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leadpilot/filter-engine/pkg/common"
	"github.com/leadpilot/filter-engine/pkg/panel"
	"github.com/leadpilot/filter-engine/pkg/persistance"
	"github.com/leadpilot/filter-engine/pkg/suggest"
	"github.com/leadpilot/filter-engine/pkg/tracking"
)

// SuggestOptions tunes the per-session autocomplete brokers.
type SuggestOptions struct {
	Debounce  time.Duration
	MinPrefix int
	CacheSize int
}

// WebServer holds the shared collaborators and a per-session registry of
// panel controllers and autocomplete brokers. Controllers are created
// lazily on first use and live for the session.
type WebServer struct {
	Persist   *persistance.Adapter
	Executor  panel.Executor
	Tracking  tracking.Tracking
	Log       *zap.Logger
	SourceFor func(field, entity string) suggest.Source
	Suggest   SuggestOptions

	mu       sync.Mutex
	sessions map[int]*session
}

type session struct {
	panels   map[string]*panel.Controller
	brokers  map[string]*suggest.Broker
	lastSeen time.Time
}

func (s *session) close() {
	for _, b := range s.brokers {
		b.Close()
	}
}

func (ws *WebServer) sessionFor(id int) *session {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.sessions == nil {
		ws.sessions = map[int]*session{}
	}
	s, ok := ws.sessions[id]
	if !ok {
		s = &session{
			panels:  map[string]*panel.Controller{},
			brokers: map[string]*suggest.Broker{},
		}
		ws.sessions[id] = s
	}
	s.lastSeen = time.Now()
	return s
}

func (ws *WebServer) panelFor(sessionId int, page string) (*panel.Controller, bool) {
	cfg, ok := Pages[page]
	if !ok {
		return nil, false
	}
	s := ws.sessionFor(sessionId)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ctrl, ok := s.panels[page]
	if !ok {
		// Snapshots are per (session, panel); the shared storage key
		// from Pages is only the panel part.
		cfg.StorageKey = fmt.Sprintf("%d:%s", sessionId, cfg.StorageKey)
		ctrl = panel.NewController(cfg, ws.Persist, ws.Executor,
			panel.WithTracking(ws.Tracking),
			panel.WithLogger(ws.Log),
			panel.WithSession(sessionId),
		)
		s.panels[page] = ctrl
	}
	return ctrl, true
}

func (ws *WebServer) brokerFor(sessionId int, page, field string) (*suggest.Broker, bool) {
	cfg, ok := Pages[page]
	if !ok {
		return nil, false
	}
	if _, ok := suggestFacet[field]; !ok {
		return nil, false
	}
	s := ws.sessionFor(sessionId)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	key := page + "/" + field
	b, ok := s.brokers[key]
	if !ok {
		opts := []suggest.Option{}
		if ws.Suggest.Debounce > 0 {
			opts = append(opts, suggest.WithDebounce(ws.Suggest.Debounce))
		}
		if ws.Suggest.MinPrefix > 0 {
			opts = append(opts, suggest.WithMinPrefix(ws.Suggest.MinPrefix))
		}
		if ws.Suggest.CacheSize > 0 {
			opts = append(opts, suggest.WithCacheSize(ws.Suggest.CacheSize))
		}
		b = suggest.NewBroker(ws.SourceFor(field, cfg.Entity), ws.Log, opts...)
		s.brokers[key] = b
	}
	return b, true
}

// EvictIdleSessions drops every session idle for longer than maxIdle,
// closing its brokers, and reports how many were evicted. Persisted
// snapshots are untouched; an evicted session restores on its next request.
func (ws *WebServer) EvictIdleSessions(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	evicted := 0
	for id, s := range ws.sessions {
		if s.lastSeen.Before(cutoff) {
			s.close()
			delete(ws.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartEviction runs EvictIdleSessions on the given interval until the
// returned stop function is called.
func (ws *WebServer) StartEviction(interval, maxIdle time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := ws.EvictIdleSessions(maxIdle); n > 0 {
					ws.Log.Debug("evicted idle sessions", zap.Int("count", n))
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

func (ws *WebServer) MakeRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/panels/{page}", common.JsonHandler(ws.Log, ws.GetPanel))
	mux.HandleFunc("PUT /api/panels/{page}/facets/{name}", common.JsonHandler(ws.Log, ws.SetFacet))
	mux.HandleFunc("DELETE /api/panels/{page}/facets/{name}", common.JsonHandler(ws.Log, ws.ClearFacet))
	mux.HandleFunc("DELETE /api/panels/{page}/tags", common.JsonHandler(ws.Log, ws.DeleteTag))
	mux.HandleFunc("POST /api/panels/{page}/groups/{group}", common.JsonHandler(ws.Log, ws.ToggleGroup))
	mux.HandleFunc("POST /api/panels/{page}/apply", common.JsonHandler(ws.Log, ws.Apply))
	mux.HandleFunc("POST /api/panels/{page}/clear", common.JsonHandler(ws.Log, ws.ClearAll))
	mux.HandleFunc("POST /api/panels/{page}/pick", common.JsonHandler(ws.Log, ws.PickSuggestion))
	mux.HandleFunc("GET /api/panels/{page}/suggest/{field}", common.JsonHandler(ws.Log, ws.Suggestions))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, r *http.Request) {
		common.RespondToOptions(w, r)
	})

	return mux
}
