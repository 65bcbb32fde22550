package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rg0now/device-assessment/pkg/analyzer"
	"github.com/rg0now/device-assessment/pkg/catalog"
	"github.com/rg0now/device-assessment/pkg/config"
	"github.com/rg0now/device-assessment/pkg/logger"
	"github.com/rg0now/device-assessment/pkg/output"
	"go.uber.org/zap"
)

// Server is the HTTP front for the assessment engine. It holds no
// per-client state apart from rate limit buckets.
type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	limiter *RateLimiter
}

// New wires routes and middleware.
func New(cfg *config.Config, store *catalog.Store, a *analyzer.Analyzer) (*Server, error) {
	format, err := output.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(CORSMiddleware(cfg.CORS))
	router.Use(limiter.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"catalog": catalogInfo(store.Current()),
		})
	})

	assessmentHandler := NewAssessmentHandler(a, NewValidator(), format)
	catalogHandler := NewCatalogHandler(store, a)

	v1 := router.Group("/api/v1")
	{
		assessmentHandler.RegisterRoutes(v1)
		catalogHandler.RegisterRoutes(v1)
	}

	return &Server{cfg: cfg, router: router, limiter: limiter}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.pruneLimiters(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) pruneLimiters(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Prune()
		}
	}
}
