package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/taskdeck/taskdeck/internal/integration"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/webhook"
)

const maxWebhookBody = 1 << 20

// Service is the orchestrator surface the handlers drive.
type Service interface {
	AuthorizationURL(provider integration.Provider, userID string) (string, error)
	HandleOAuthCallback(ctx context.Context, provider integration.Provider, code, state string) integration.ConnectionResult
	ConnectWithCredentials(ctx context.Context, provider integration.Provider, fields map[string]string, userID string) integration.ConnectionResult
	Disconnect(ctx context.Context, provider integration.Provider) error
	Sync(ctx context.Context, provider integration.Provider) integration.SyncResult
	SyncAll(ctx context.Context) []integration.SyncResult
	GetConfig(ctx context.Context, provider integration.Provider) (integration.Config, error)
	Configs(ctx context.Context) ([]integration.Config, error)
}

// Handlers groups the HTTP handlers and their dependencies.
type Handlers struct {
	Service       Service
	WebhookSecret string
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) HandleListIntegrations(c *echo.Context) error {
	configs, err := h.Service.Configs(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "failed to load integrations"})
	}
	masked := make([]integration.Config, 0, len(configs))
	for _, cfg := range configs {
		masked = append(masked, cfg.Masked())
	}
	return c.JSON(http.StatusOK, masked)
}

func (h *Handlers) HandleGetIntegration(c *echo.Context) error {
	provider, err := integration.ParseProvider(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	cfg, err := h.Service.GetConfig(c.Request().Context(), provider)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorBody{Error: "integration not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "failed to load integration"})
	}
	return c.JSON(http.StatusOK, cfg.Masked())
}

// HandleAuthorize starts the redirect flow. A provider without an OAuth app
// registration yields 404: this deployment cannot use OAuth for it.
func (h *Handlers) HandleAuthorize(c *echo.Context) error {
	provider, err := integration.ParseProvider(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "user_id is required"})
	}

	url, err := h.Service.AuthorizationURL(provider, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "failed to build authorization url"})
	}
	if url == "" {
		return c.JSON(http.StatusNotFound, errorBody{Error: "oauth is not configured for this provider"})
	}
	return c.Redirect(http.StatusFound, url)
}

func (h *Handlers) HandleOAuthCallback(c *echo.Context) error {
	provider, err := integration.ParseProvider(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}

	result := h.Service.HandleOAuthCallback(c.Request().Context(), provider, c.QueryParam("code"), c.QueryParam("state"))
	if !result.Success {
		return c.JSON(http.StatusBadRequest, result)
	}
	if result.Config != nil {
		masked := result.Config.Masked()
		result.Config = &masked
	}
	return c.JSON(http.StatusOK, result)
}

type connectRequest struct {
	UserID string            `json:"user_id"`
	Fields map[string]string `json:"fields"`
}

func (h *Handlers) HandleConnect(c *echo.Context) error {
	provider, err := integration.ParseProvider(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}

	var req connectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "user_id is required"})
	}

	result := h.Service.ConnectWithCredentials(c.Request().Context(), provider, req.Fields, req.UserID)
	if !result.Success {
		return c.JSON(http.StatusUnprocessableEntity, result)
	}
	if result.Config != nil {
		masked := result.Config.Masked()
		result.Config = &masked
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handlers) HandleDisconnect(c *echo.Context) error {
	provider, err := integration.ParseProvider(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	if err := h.Service.Disconnect(c.Request().Context(), provider); err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "failed to disconnect"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) HandleSync(c *echo.Context) error {
	provider, err := integration.ParseProvider(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, h.Service.Sync(c.Request().Context(), provider))
}

func (h *Handlers) HandleSyncAll(c *echo.Context) error {
	results := h.Service.SyncAll(c.Request().Context())
	if results == nil {
		results = []integration.SyncResult{}
	}
	return c.JSON(http.StatusOK, results)
}

// HandleWebhook accepts provider event deliveries. The signature must verify
// before the payload is acknowledged; processing is the host's concern.
func (h *Handlers) HandleWebhook(c *echo.Context) error {
	provider, err := integration.ParseProvider(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	if h.WebhookSecret == "" {
		return c.JSON(http.StatusNotFound, errorBody{Error: "webhooks are not configured"})
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "failed to read payload"})
	}

	signature := c.Request().Header.Get("X-Signature")
	if !webhook.Verify([]byte(h.WebhookSecret), payload, signature) {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid signature"})
	}

	slog.Info("webhook accepted", "provider", provider, "bytes", len(payload))
	return c.NoContent(http.StatusAccepted)
}
