package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"TickerLens/internal/collector"
	"TickerLens/internal/logger"
	"TickerLens/internal/metrics"
)

// Server exposes the analysis engine over HTTP.
type Server struct {
	addr      string
	router    *gin.Engine
	collector *collector.Collector
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// Config describes the HTTP server dependencies.
type Config struct {
	Addr      string
	Mode      string
	Collector *collector.Collector
	Metrics   *metrics.Metrics
}

// New builds the router and registers every route.
func New(cfg Config) (*Server, error) {
	if cfg.Collector == nil {
		return nil, errors.New("http server requires a collector")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Mode == "" {
		cfg.Mode = gin.ReleaseMode
	}
	gin.SetMode(cfg.Mode)

	s := &Server{
		addr:      cfg.Addr,
		router:    gin.New(),
		collector: cfg.Collector,
		metrics:   cfg.Metrics,
		logger:    logger.Component("http"),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "source": s.collector.Fetcher.Name()})
	})
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api/v1")
	api.GET("/tickers/:symbol/indicators", s.handleIndicators)
	api.GET("/tickers/:symbol/outlook", s.handleOutlook)
	api.GET("/tickers/:symbol/fundamentals", s.handleFundamentals)
	api.GET("/tickers/:symbol/news", s.handleNews)
	api.GET("/glossary", s.handleGlossary)

	s.router.GET("/chart/:symbol", s.handleChart)
}

// requestLogger logs each request and records its latency.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.ObserveRequest(route, status, start)
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.RequestURI()).
			Int("status", status).
			Str("ip", c.ClientIP()).
			Dur("dur", time.Since(start)).
			Msg("HTTP request")
	}
}

// Handler returns the underlying router.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves HTTP until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info().Str("addr", s.addr).Msg("HTTP server listening")

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
