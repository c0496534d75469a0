// Package httpapi exposes the operator surface: health, pipeline stats, and
// Prometheus metrics.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"finchwire.dev/newsvet/internal/db"
	"finchwire.dev/newsvet/internal/globaltime"
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	pool   *db.Pool
	logger zerolog.Logger
	opts   Options
}

type statsResponse struct {
	Fingerprints db.FingerprintStats `json:"fingerprints"`
	Quality      *qualityMetricsView `json:"quality,omitempty"`
}

type qualityMetricsView struct {
	MetricDate      string    `json:"metric_date"`
	TotalNews       int64     `json:"total_news"`
	UniqueNews      int64     `json:"unique_news"`
	DuplicateNews   int64     `json:"duplicate_news"`
	AvgQualityScore float64   `json:"avg_quality_score"`
	SourcesActive   int64     `json:"sources_active"`
	NewsLast24h     int64     `json:"news_last_24h"`
	NewsLast7d      int64     `json:"news_last_7d"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewServer(pool *db.Pool, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8085
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		pool:   pool,
		logger: logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}
			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/stats", s.handleStats)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("newsvet operator server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("newsvet operator server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.pool.Ping(c.Request().Context()); err != nil {
		s.logger.Error().Err(err).Msg("health check ping failed")
		return internalError(c, "Database unreachable")
	}
	return success(c, map[string]any{
		"service": "newsvet",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	ctx := c.Request().Context()

	fpStats, err := s.pool.QueryFingerprintStats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("query fingerprint stats failed")
		return internalError(c, "Failed to load stats")
	}

	resp := statsResponse{Fingerprints: fpStats}

	metric, err := s.pool.LatestQualityMetrics(ctx)
	switch {
	case err == nil:
		resp.Quality = &qualityMetricsView{
			MetricDate:      metric.MetricDate.Format("2006-01-02"),
			TotalNews:       metric.TotalNews,
			UniqueNews:      metric.UniqueNews,
			DuplicateNews:   metric.DuplicateNews,
			AvgQualityScore: metric.AvgQualityScore,
			SourcesActive:   metric.SourcesActive,
			NewsLast24h:     metric.NewsLast24h,
			NewsLast7d:      metric.NewsLast7d,
			UpdatedAt:       metric.UpdatedAt,
		}
	case db.IsNoRows(err):
		// No rollup yet, fingerprint counts alone are still useful.
	default:
		s.logger.Error().Err(err).Msg("query quality metrics failed")
		return internalError(c, "Failed to load stats")
	}

	return success(c, resp)
}
