// Package httpapi provides the HTTP API for vsignd.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/agent"
)

// Engine is the conversation engine behind the API.
type Engine interface {
	RunTurn(ctx context.Context, threadID, text string) (*agent.TurnResult, error)
	DeleteThread(ctx context.Context, threadID string) error
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server exposes the chat and thread endpoints.
type Server struct {
	echo   *echo.Echo
	engine Engine
	logger *zap.Logger
	config *Config
}

// NewServer creates the HTTP server.
func NewServer(engine Engine, logger *zap.Logger, cfg *Config) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:   e,
		engine: engine,
		logger: logger,
		config: cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/chat", s.handleChat)
	v1.DELETE("/threads/:id", s.handleDeleteThread)
}

// ChatRequest is the request body for POST /api/v1/chat.
type ChatRequest struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleChat runs one conversation turn.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid chat request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ThreadID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "thread_id field is required")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message field is required")
	}

	result, err := s.engine.RunTurn(c.Request().Context(), req.ThreadID, req.Message)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.logger.Error("turn failed",
			zap.String("thread_id", req.ThreadID),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "turn failed")
	}

	return c.JSON(http.StatusOK, result)
}

// handleDeleteThread drops a thread's history. Deleting an unknown
// thread returns 204 as well.
func (s *Server) handleDeleteThread(c echo.Context) error {
	threadID := c.Param("id")
	if err := s.engine.DeleteThread(c.Request().Context(), threadID); err != nil {
		s.logger.Error("thread delete failed",
			zap.String("thread_id", threadID),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
