// Package web exposes the generation pipeline over HTTP.
package web

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tanachan3/looqn-all/internal/pipeline"
	"github.com/tanachan3/looqn-all/internal/request"
	"go.uber.org/zap"
)

// Runner executes one generation request. Implemented by pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, payload request.Payload) (*pipeline.Result, error)
}

// Server serves the message-generation API.
type Server struct {
	echo   *echo.Echo
	runner Runner
	log    *zap.Logger
}

// NewServer wires routes and middleware around a pipeline runner.
// rateLimit is requests per second per client; zero disables limiting.
func NewServer(runner Runner, rateLimit float64, burst int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover(), middleware.CORS())
	if rateLimit > 0 {
		e.Use(RateLimitMiddleware(rateLimit, burst))
	}

	s := &Server{echo: e, runner: runner, log: log}

	e.GET("/healthz", s.handleHealth)
	e.POST("/api/messages", s.handleMessages)

	return s
}

// Start begins listening on host:port.
func (s *Server) Start(host string, port int) error {
	return s.echo.Start(fmt.Sprintf("%s:%d", host, port))
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
