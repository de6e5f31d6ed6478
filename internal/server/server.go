// Package server exposes farm profiles and advisories over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KaramelBytes/agriassist-cli/internal/advisory"
	"github.com/KaramelBytes/agriassist-cli/internal/logging"
	"github.com/KaramelBytes/agriassist-cli/internal/store"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Store is the persistence the HTTP surface reads and writes.
type Store interface {
	Ping(ctx context.Context) error
	CreateFarm(ctx context.Context, p *store.FarmProfile) error
	ListFarms(ctx context.Context) ([]store.FarmProfile, error)
	GetFarm(ctx context.Context, id uint) (*store.FarmProfile, error)
	ListAdvisories(ctx context.Context, farmID uint, category string) ([]store.AdvisoryLog, error)
}

// Advisor generates and stores advisories.
type Advisor interface {
	GenerateAll(ctx context.Context, farmID uint, in advisory.Inputs) (map[string][]string, error)
	OptimizeResources(ctx context.Context, farmID uint, w *advisory.Weather, s *advisory.Soil) (map[string][]string, error)
}

// Metrics observes requests and serves the exposition endpoint.
type Metrics interface {
	HTTPObserver
	Handler() http.Handler
}

// Server is the gin application plus its listener settings.
type Server struct {
	store   Store
	engine  Advisor
	metrics Metrics
	logger  *slog.Logger
	router  *gin.Engine
	addr    string
}

// New wires the routes. m may be nil, in which case /metrics is not served.
func New(s Store, engine Advisor, m Metrics, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	srv := &Server{
		store:   s,
		engine:  engine,
		metrics: m,
		logger:  logger.With("component", "http"),
		addr:    addr,
	}
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	var obs HTTPObserver
	if s.metrics != nil {
		obs = s.metrics
	}
	r.Use(requestID(), accessLog(s.logger, obs), recovery(s.logger))

	r.GET("/health", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	{
		farms := api.Group("/farm-profiles")
		{
			farms.GET("", s.listFarms)
			farms.POST("", s.createFarm)
			farms.GET("/:id", s.getFarm)
			farms.GET("/:id/advisories", s.listAdvisories)
			farms.POST("/:id/advisories", s.generateAdvisories)
			farms.POST("/:id/optimize", s.optimize)
		}
	}
	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
