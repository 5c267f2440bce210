package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/config"
	apperrors "git.home.luguber.info/inful/blogpub/internal/errors"
	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
)

// Server is the daemon's HTTP surface: the push webhook, liveness, status,
// and the optional metrics endpoint, all on one listener.
type Server struct {
	cfg        config.DaemonConfig
	handlers   *Handlers
	metricsH   http.Handler
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
	mchain     func(http.Handler) http.Handler
}

// NewServer creates the HTTP server. metricsH may be nil when the metrics
// endpoint is disabled.
func NewServer(cfg config.DaemonConfig, svc Service, recorder metrics.Recorder, metricsH http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	adapter := apperrors.NewHTTPErrorAdapter(logger)
	return &Server{
		cfg:      cfg,
		handlers: NewHandlers(svc, recorder, logger),
		metricsH: metricsH,
		logger:   logger,
		mchain:   middlewareChain(logger, adapter),
	}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/hooks/push", s.handlers.HandlePush)
	mux.HandleFunc("/healthz", s.handlers.HandleHealthz)
	mux.HandleFunc("/status", s.handlers.HandleStatus)

	if s.cfg.Metrics.Enabled && s.metricsH != nil {
		path := s.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.metricsH)
	}

	return mux
}

// Start binds the listen address and begins serving. The bind happens
// synchronously so an occupied port fails startup instead of logging from a
// goroutine after the daemon reports itself running.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.cfg.Listen, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      s.mchain(s.mux()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", logfields.Error(err))
		}
	}()

	s.logger.Info("HTTP server started", slog.String("addr", s.Addr()))
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Listen
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
