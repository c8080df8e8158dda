// Package server exposes the game over HTTP: a JSON API under /api, a
// websocket stream at /ws and Prometheus metrics at /metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	AllowOrigins    []string
}

// Deps are the components the server exposes.
type Deps struct {
	Handler  *Handler
	Hub      *Hub
	Gatherer prometheus.Gatherer
}

// Server wraps the echo HTTP server.
type Server struct {
	echo *echo.Echo
	cfg  Config
	hub  *Hub
	log  zerolog.Logger
}

// New creates the HTTP server and registers every route.
func New(cfg Config, deps Deps, log zerolog.Logger) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recover(log))
	e.Use(RequestLogging(log))
	e.Use(CORS(CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
	}))

	if deps.Handler != nil {
		deps.Handler.RegisterRoutes(e)
	}
	if deps.Hub != nil {
		e.GET("/ws", deps.Hub.ServeWS)
	}
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/healthz", func(c echo.Context) error {
		return SuccessResponse(c, map[string]string{"status": "ok"})
	})

	return &Server{echo: e, cfg: cfg, hub: deps.Hub, log: log}
}

// Start starts listening in the background.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server error")
		}
	}()
	return nil
}

// Stop disconnects websocket clients and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.CloseAll()
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
