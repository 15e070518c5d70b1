package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/amterp/forts/internal/metrics"
)

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Dev enables template live reload. TemplateDir must then point at the
	// directory the handler's views were loaded from.
	Dev         bool
	TemplateDir string
}

// Server wraps the HTTP server for the catalog.
type Server struct {
	httpServer *http.Server
	watcher    *TemplateWatcher
	hub        *ReloadHub
	logger     *zap.Logger
}

// NewServer registers handler's routes and wraps them in the middleware
// chain. In dev mode it also watches TemplateDir and pushes reloads to
// connected pages over /dev/reload.
func NewServer(handler *Handler, opts ServerOptions, logger *zap.Logger, m *metrics.Recorder) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler.SetMetrics(m)
	handler.SetDev(opts.Dev)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	s := &Server{logger: logger}
	if opts.Dev {
		s.hub = NewReloadHub(logger)
		mux.HandleFunc("GET /dev/reload", s.hub.ServeWS)

		if opts.TemplateDir != "" {
			watcher, err := NewTemplateWatcher(opts.TemplateDir, logger)
			if err != nil {
				logger.Warn("failed to create template watcher", zap.Error(err))
			} else {
				// Views re-parse before pages are told to reload.
				watcher.Subscribe(handler.views)
				watcher.Subscribe(s.hub)
				s.watcher = watcher
			}
		}
	}

	// RequestID is outermost so the logger sees the ID it assigned.
	wrapped := RequestID(Logging(logger, m, Cors(mux)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      wrapped,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. Blocks until shutdown.
func (s *Server) Start() error {
	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			s.logger.Warn("failed to start template watcher", zap.Error(err))
		}
	}
	s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn("failed to stop template watcher", zap.Error(err))
		}
	}
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
