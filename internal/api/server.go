package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/awbridge/internal/config"
)

// ShutdownTimeout bounds graceful shutdown after the launch context ends.
const ShutdownTimeout = 5 * time.Second

// Service is a configured but not yet listening HTTP service.
type Service struct {
	cfg   config.AWConfig
	state *ServerState
	srv   *http.Server

	readyOnce sync.Once
	ready     chan struct{}
	addr      string
}

// Build assembles the router for state and cfg.
func Build(state *ServerState, cfg config.AWConfig) *Service {
	s := &Service{
		cfg:   cfg,
		state: state,
		ready: make(chan struct{}),
	}

	cors := newCORSPolicy(cfg)
	slog.Debug("cors policy", "origins", cors.originList())

	s.srv = &http.Server{
		Handler:           cors.middleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped handler, for in-process testing.
func (s *Service) Handler() http.Handler {
	return s.srv.Handler
}

// Ready is closed once the listener is bound.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address. Only valid after Ready is closed.
func (s *Service) Addr() string {
	<-s.ready
	return s.addr
}

// Launch binds the listener and serves until ctx is cancelled.
// It returns nil after a graceful shutdown.
func (s *Service) Launch(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}
	s.readyOnce.Do(func() {
		s.addr = lis.Addr().String()
		close(s.ready)
	})
	slog.Info("server listening", "addr", s.addr, "testing", s.cfg.Testing)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	slog.Info("server stopped", "addr", s.addr)
	return err
}

func (s *Service) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/0/info", s.handleInfo)
	mux.HandleFunc("GET /api/0/buckets/{$}", s.handleListBuckets)
	mux.HandleFunc("GET /api/0/buckets/{id}", s.handleGetBucket)
	mux.HandleFunc("POST /api/0/buckets/{id}", s.handleCreateBucket)
	mux.HandleFunc("DELETE /api/0/buckets/{id}", s.handleDeleteBucket)
	mux.HandleFunc("GET /api/0/buckets/{id}/events", s.handleGetEvents)
	mux.HandleFunc("POST /api/0/buckets/{id}/events", s.handleInsertEvents)
	mux.HandleFunc("GET /api/0/buckets/{id}/events/count", s.handleEventCount)
	mux.HandleFunc("POST /api/0/buckets/{id}/heartbeat", s.handleHeartbeat)

	if s.state.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.state.Gatherer, promhttp.HandlerOpts{}))
	}

	if dir := s.cfg.AssetDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			mux.Handle("GET /", http.FileServer(http.Dir(dir)))
		} else {
			slog.Warn("asset directory unavailable, web UI disabled", "dir", dir)
		}
	}

	return mux
}
