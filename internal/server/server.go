// Package server assembles the echo HTTP server: middleware, JWT guard for
// the admin API, and route registration.
package server

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mediahook/mediahook/internal/auth"
)

// Handler is anything that can register routes on the echo instance.
type Handler interface {
	Register(e *echo.Echo)
}

type Server struct {
	echo *echo.Echo
	addr string
}

// New builds the server. The webhook and health endpoints are public; the
// admin API under /api is JWT-protected when a secret is configured, and
// absent otherwise.
func New(addr, jwtSecret string, handlers []Handler) *Server {
	if addr == "" {
		addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLogger())
	if jwtSecret != "" {
		e.Use(auth.JWTMiddleware(jwtSecret, shouldSkipJWT))
	}

	for _, h := range handlers {
		if h != nil {
			h.Register(e)
		}
	}

	return &Server{
		echo: e,
		addr: addr,
	}
}

func shouldSkipJWT(c echo.Context) bool {
	path := c.Request().URL.Path
	if path == "/webhook" || path == "/health" {
		return true
	}
	return !strings.HasPrefix(path, "/api/")
}

func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
