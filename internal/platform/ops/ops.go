// Package ops exposes liveness and readiness probes for the bot worker.
// Plain HTTP, no auth: the endpoints carry no patient data.
package ops

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/censo/censobot/internal/platform/db"
)

// ConnChecker reports whether the messaging transport currently has a live
// connection.
type ConnChecker interface {
	Connected() bool
}

// Server wraps the probe endpoints.
type Server struct {
	e    *echo.Echo
	addr string
	log  zerolog.Logger
}

func NewServer(port string, database db.Pinger, conn ConnChecker, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/readyz", func(c echo.Context) error {
		dbUp := true
		status := map[string]interface{}{
			"transport": conn.Connected(),
		}
		if err := db.CheckReady(c.Request().Context(), database); err != nil {
			dbUp = false
			status["error"] = err.Error()
		}
		status["database"] = dbUp
		if !dbUp || !conn.Connected() {
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		return c.JSON(http.StatusOK, status)
	})

	return &Server{e: e, addr: ":" + port, log: log}
}

// Start serves the probes until Shutdown.
func (s *Server) Start() error {
	err := s.e.Start(s.addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
