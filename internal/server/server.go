// Package server is the JSON HTTP surface of the news assistant.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsrag/internal/domain"
	"newsrag/internal/ingest"
	"newsrag/internal/logger"
	"newsrag/internal/service"
)

// NewsPort is the subset of the news service the HTTP layer calls.
type NewsPort interface {
	CreateSession() string
	Chat(ctx context.Context, query, sessionID string) (service.ChatResult, error)
	History(ctx context.Context, sessionID string) ([]domain.Turn, error)
	DeleteSession(ctx context.Context, sessionID string) (bool, error)
	Articles() []domain.Article
	Stats(ctx context.Context) (service.Stats, error)
	Ingest(ctx context.Context) (ingest.Report, error)
}

type Config struct {
	Listen       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	echo   *echo.Echo
	port   NewsPort
	cfg    Config
	logger *slog.Logger
}

func New(port NewsPort, cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, port: port, cfg: cfg, logger: log.With("component", "http")}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
			if v.Error != nil {
				s.logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			s.logger.Debug("request", attrs...)
			return nil
		},
	}))
	e.Use(s.scopedLogger)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.POST("/session", s.createSession)
	api.GET("/session/:id/history", s.history)
	api.DELETE("/session/:id", s.deleteSession)
	api.POST("/chat", s.chat)
	api.GET("/articles", s.articles)
	api.GET("/stats", s.stats)
	api.POST("/ingest", s.ingest)
}

// scopedLogger stores a request-scoped logger in the request context.
func (s *Server) scopedLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		req := c.Request()
		c.SetRequest(req.WithContext(logger.WithContext(req.Context(), s.logger.With("request_id", id))))
		return next(c)
	}
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.echo,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
