// Package server is the HTTP face of the hook orchestrator: it initializes the
// hooks before accepting traffic, exposes their merged public info, and tears
// them down on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/common/middleware"
	"yqhp/hookserver/common/response"
	"yqhp/hookserver/internal/hook"
)

// Server wires the orchestrator into a fiber app.
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	orch    *hook.Orchestrator
	metrics *prometheus.Registry
	log     *zap.Logger
	started time.Time
}

// New creates the server around an orchestrator. The orchestrator's metrics, if
// any, are expected to be registered with reg; a nil reg gets a fresh registry
// with the Go and process collectors.
func New(cfg *config.Config, orch *hook.Orchestrator, reg *prometheus.Registry) *Server {
	if cfg == nil {
		cfg = orch.Config()
	}
	if reg == nil {
		reg = NewRegistry()
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          response.ErrorHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:     app,
		cfg:     cfg,
		orch:    orch,
		metrics: reg,
		log:     orch.Logger().Named("server"),
		started: time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// NewRegistry returns a prometheus registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (s *Server) setupMiddleware() {
	s.app.Use(middleware.Recover())
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger())
	if s.cfg.Server.EnableCORS {
		s.app.Use(middleware.CORS())
	}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Run initializes the hooks, serves HTTP, and blocks until ctx is cancelled or
// SIGINT/SIGTERM arrives. SIGHUP resets the hooks in place.
//
// If InitHooks fails, hooks that did initialize are destroyed before Run
// returns the init error.
func (s *Server) Run(ctx context.Context, candidates hook.Candidates) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if err := s.orch.InitHooks(ctx, candidates); err != nil {
		if s.orch.State() == hook.StateFailed {
			s.log.Warn("cleaning up partially initialized hooks")
			if kerr := s.orch.KillHooks(context.WithoutCancel(ctx)); kerr != nil {
				s.log.Error("cleanup after failed init", zap.Error(kerr))
				return errors.Join(fmt.Errorf("init hooks: %w", err), kerr)
			}
		}
		return fmt.Errorf("init hooks: %w", err)
	}

	addr := s.cfg.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		kerr := s.orch.KillHooks(context.WithoutCancel(ctx))
		return errors.Join(fmt.Errorf("listen %s: %w", addr, err), kerr)
	}
	// Shutdown may run before Serve picks ln up.
	defer ln.Close()

	s.log.Info("server listening", zap.String("addr", ln.Addr().String()))
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- s.app.Listener(ln)
	}()

	for {
		select {
		case sig := <-sigs:
			if !s.handleSignal(ctx, sig) {
				continue
			}
			return s.Shutdown(context.WithoutCancel(ctx))
		case <-ctx.Done():
			s.log.Info("context cancelled, shutting down")
			return s.Shutdown(context.WithoutCancel(ctx))
		case err := <-listenErr:
			s.log.Error("listener stopped", zap.Error(err))
			kerr := s.orch.KillHooks(context.WithoutCancel(ctx))
			return errors.Join(fmt.Errorf("serve %s: %w", addr, err), kerr)
		}
	}
}

// handleSignal reacts to sig and reports whether the server should stop.
func (s *Server) handleSignal(ctx context.Context, sig os.Signal) bool {
	if sig == syscall.SIGHUP {
		s.log.Info("SIGHUP received, resetting hooks")
		if err := s.orch.ResetHooks(ctx); err != nil {
			s.log.Error("reset hooks", zap.Error(err))
		}
		return false
	}
	s.log.Info("signal received, shutting down", zap.String("signal", sig.String()))
	return true
}

// Shutdown stops accepting requests, waits up to server.shutdown_timeout for
// in-flight ones, then destroys the hooks.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.app.ShutdownWithTimeout(s.cfg.Server.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http: %w", err))
	}

	switch s.orch.State() {
	case hook.StateReady, hook.StateFailed:
		if err := s.orch.KillHooks(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kill hooks: %w", err))
		}
	}

	if len(errs) == 0 {
		s.log.Info("server stopped")
	}
	return errors.Join(errs...)
}
