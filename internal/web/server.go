// pattern: Imperative Shell

// Package web is the instance server: a localhost HTTP surface over a
// running editor. The TUI publishes a snapshot after every update;
// the handlers serve that snapshot, forward remote opens into the
// program, stream change signals over SSE and mirror rendered frames
// over websocket.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"loom/internal/events"
	"loom/internal/logging"
)

// Server is the per-instance HTTP server.
type Server struct {
	httpServer *http.Server
	notifyTUI  func(any)
	logger     *logging.ScopedLogger
	addr       string
	listener   net.Listener
	broker     *eventBroker

	version string
	workDir string

	mu   sync.RWMutex
	snap events.Snapshot
	seen bool
}

// Config holds instance server configuration. A zero Bind means
// localhost only; a zero Port picks an ephemeral one.
type Config struct {
	Bind    string
	Port    int
	Version string
	WorkDir string
}

// New creates the instance server. notifyTUI is called with remote
// messages to inject into the running program via Program.Send; a nil
// notifyTUI rejects mutating requests. logProvider must implement
// logging.LoggerProvider (both *logging.Manager and
// *logging.TestLogManager do).
func New(cfg Config, notifyTUI func(any), logProvider logging.LoggerProvider) *Server {
	logger := logProvider.For("web")

	bind := cfg.Bind
	if bind == "" {
		bind = "127.0.0.1"
	}
	addr := fmt.Sprintf("%s:%d", bind, cfg.Port)

	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		notifyTUI: notifyTUI,
		logger:    logger,
		addr:      addr,
		broker:    newEventBroker(),
		version:   cfg.Version,
		workDir:   cfg.WorkDir,
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/layout", s.handleLayout)
	mux.HandleFunc("POST /api/open", s.handleOpen)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /ws/frames", s.handleFrames)
	mux.HandleFunc("GET /ws/terminal", s.handleTerminal)
	mux.HandleFunc("GET /{$}", s.handleInspector)

	return s
}

// Publish stores snap as the picture every endpoint serves and wakes
// the SSE and frame subscribers. Safe from any goroutine; the TUI
// calls it after each update pass.
func (s *Server) Publish(snap events.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.seen = true
	s.mu.Unlock()
	s.broker.Notify()
}

// latest returns the most recent snapshot and whether one has arrived.
func (s *Server) latest() (events.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.seen
}

// Listen binds the server to its configured address and returns the
// listener. Call Serve() after Listen() to start accepting
// connections. The two-step approach lets callers read the actual
// bound address (ephemeral port 0) before the server blocks.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("instance server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on the listener. Blocks until the server
// stops. Must call Listen() first.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("instance server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Addr returns the bound listener address, or the configured address
// if Listen() has not run yet.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown stops the server, letting in-flight requests finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("instance server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
