// Package admin exposes a read-only HTTP surface over a running
// composition: registered keys, the state tree and its slices, and
// Prometheus metrics. The admin surface never dispatches actions.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"

	"github.com/composekit/subapp/internal/metrics"
	"github.com/composekit/subapp/pkg/logger"
	"github.com/composekit/subapp/store"
	"github.com/composekit/subapp/subapp"
)

// Config controls the admin server.
type Config struct {
	Addr              string
	RequestsPerSecond int
	Burst             int
}

// Server serves the inspection API for a store and its registry.
type Server struct {
	cfg       Config
	root      store.Store
	registry  *subapp.Registry
	collector *metrics.Collector
	log       *logger.Logger
	router    *mux.Router
	srv       *http.Server
}

// NewServer builds the admin server. The collector may be nil, in which
// case /metrics is not registered.
func NewServer(cfg Config, root store.Store, registry *subapp.Registry, collector *metrics.Collector, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		cfg:       cfg,
		root:      root,
		registry:  registry,
		collector: collector,
		log:       log,
		router:    mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/v1/keys", s.handleKeys).Methods("GET")
	s.router.HandleFunc("/v1/state", s.handleState).Methods("GET")
	s.router.HandleFunc("/v1/state/{path}", s.handleStateAt).Methods("GET")
	if s.collector != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.collector.Registry(), promhttp.HandlerOpts{})).Methods("GET")
	}
}

// Handler returns the HTTP handler, with rate limiting applied when
// configured.
func (s *Server) Handler() http.Handler {
	if s.cfg.RequestsPerSecond <= 0 {
		return s.router
	}
	rl := newRateLimiter(s.cfg.RequestsPerSecond, s.cfg.Burst, s.log)
	return rl.handler(s.router)
}

// Start begins serving on the configured address. It returns once the
// listener goroutine is launched.
func (s *Server) Start() {
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("admin server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("admin server failed")
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// keyInfo describes one registered binding.
type keyInfo struct {
	Key            string       `json:"key"`
	Phase          subapp.Phase `json:"phase"`
	HasProcess     bool         `json:"has_process"`
	ProcessStarted bool         `json:"process_started"`
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	keys := s.registry.Keys()
	infos := make([]keyInfo, 0, len(keys))
	for _, key := range keys {
		info := keyInfo{Key: key, ProcessStarted: s.registry.ProcessStarted(key)}
		if b, ok := s.registry.Binding(key); ok {
			info.Phase = b.Phase()
			info.HasProcess = b.Process != nil
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := s.root.GetState()
	if state == nil {
		state = store.State{}
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleStateAt(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]

	snapshot, err := json.Marshal(s.root.GetState())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to snapshot state")
		return
	}

	result := gjson.GetBytes(snapshot, path)
	if !result.Exists() {
		writeError(w, http.StatusNotFound, "no state at key "+path)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result.Raw))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out; nothing useful to do.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
