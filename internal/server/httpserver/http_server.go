// Package httpserver wires the control server endpoints onto one listener.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
	"git.home.luguber.info/inful/solvent/internal/server/handlers"
	smw "git.home.luguber.info/inful/solvent/internal/server/middleware"
)

// Options carries the server dependencies.
type Options struct {
	Addr         string
	Orchestrator handlers.Orchestrator
	Workspace    handlers.Workspace
	Events       handlers.EventBuffer
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server is the HTTP control surface of serve mode.
type Server struct {
	opts   Options
	logger *slog.Logger
	srv    *http.Server
	ln     net.Listener

	errorAdapter *ferrors.HTTPErrorAdapter
	handler      http.Handler
}

// New builds the server and its routes. Nothing listens until Start.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		opts:         opts,
		logger:       logger,
		errorAdapter: ferrors.NewHTTPErrorAdapter(logger),
	}
	s.handler = smw.Chain(logger, s.errorAdapter)(s.routes())
	return s
}

func (s *Server) routes() *http.ServeMux {
	buildH := handlers.NewBuildHandlers(s.opts.Orchestrator, s.errorAdapter)
	apiH := handlers.NewAPIHandlers(s.opts.Workspace, s.errorAdapter)
	eventH := handlers.NewEventHandlers(s.opts.Events, s.errorAdapter)
	monH := handlers.NewMonitoringHandlers(s.opts.Orchestrator, s.opts.Workspace, s.errorAdapter)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /build", buildH.HandleBuild)
	mux.HandleFunc("POST /clean", buildH.HandleClean)
	mux.HandleFunc("POST /stop", buildH.HandleStop)
	mux.HandleFunc("POST /ack", buildH.HandleAcknowledge)
	mux.HandleFunc("GET /status", buildH.HandleStatus)
	mux.HandleFunc("GET /events", eventH.HandleEvents)
	mux.HandleFunc("GET /solution", apiH.HandleSolution)
	mux.HandleFunc("POST /select", apiH.HandleSelect)
	mux.HandleFunc("POST /reload", apiH.HandleReload)
	mux.HandleFunc("GET /healthz", monH.HandleHealth)
	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics)
	}
	return mux
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler { return s.handler }

// Start binds the listener and serves in the background. Binding errors are
// returned immediately.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "control server failed to bind").
			WithContext("addr", s.opts.Addr).Build()
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Control server error", logfields.Error(err))
		}
	}()
	s.logger.Info("Control server started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.opts.Addr
	}
	return s.ln.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "control server shutdown failed").Build()
	}
	s.logger.Info("Control server stopped")
	return nil
}
