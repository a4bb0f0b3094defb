package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/rest/app"
	"github.com/mensylisir/opsagent/rest/server/handler"
)

// APIServer represents the REST API server.
type APIServer struct {
	log     *logger.Logger
	config  *Config
	service *app.PlanService
}

// Config holds configuration for the APIServer.
type Config struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// NewDefaultConfig creates a default configuration for the server.
func NewDefaultConfig() *Config {
	return &Config{
		ListenAddress:   common.DefaultListenAddress,
		ReadTimeout:     common.DefaultReadTimeout,
		WriteTimeout:    common.DefaultWriteTimeout,
		ShutdownTimeout: common.DefaultShutdownTimeout,
	}
}

func NewAPIServer(cfg *Config, service *app.PlanService, log *logger.Logger) *APIServer {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = common.DefaultShutdownTimeout
	}
	if log == nil {
		log = logger.Get()
	}
	return &APIServer{log: log, config: cfg, service: service}
}

// Handler builds the router. Exposed for tests.
func (s *APIServer) Handler() http.Handler {
	return SetupRouter(s.log, handler.NewPlanHandler(s.service, s.log))
}

// Start listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *APIServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.config.ListenAddress)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start with a caller-provided listener.
func (s *APIServer) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Infof("API server listening on %s", ln.Addr())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "API server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Infof("API server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "API server graceful shutdown failed")
		}
		s.log.Infof("API server shutdown complete.")
		return nil
	})
	return g.Wait()
}
