// Package httpapi exposes the orchestrator to the host UI over REST.
package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

// Server wraps the echo instance and its routes.
type Server struct {
	e *echo.Echo
	h *Handlers
}

// NewServer registers all routes against a handler set.
func NewServer(h *Handlers) *Server {
	e := echo.New()
	e.Use(middleware.Recover())

	e.GET("/healthz", h.HandleHealthz)

	e.GET("/integrations", h.HandleListIntegrations)
	e.GET("/integrations/:provider", h.HandleGetIntegration)
	e.GET("/integrations/:provider/authorize", h.HandleAuthorize)
	e.POST("/integrations/:provider/connect", h.HandleConnect)
	e.DELETE("/integrations/:provider", h.HandleDisconnect)
	e.POST("/integrations/:provider/sync", h.HandleSync)
	e.POST("/sync", h.HandleSyncAll)

	e.GET("/oauth/callback/:provider", h.HandleOAuthCallback)
	e.POST("/webhooks/:provider", h.HandleWebhook)

	return &Server{e: e, h: h}
}

// Handler exposes the router for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.e
}
