// Package orchestrator is the single entry point the host application drives
// integrations through: authorize, connect, disconnect, sync. It composes
// the credential model, the persistence port, the OAuth state manager, and
// the connector registry without leaking provider-specific logic.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/connectors"
	"github.com/taskdeck/taskdeck/internal/integration"
	"github.com/taskdeck/taskdeck/internal/metrics"
	"github.com/taskdeck/taskdeck/internal/oauthstate"
	"github.com/taskdeck/taskdeck/internal/store"
)

// Orchestrator owns the connector registry exclusively; no other component
// mutates it. All operations are safe to call concurrently for different
// providers. Two simultaneous connects against the same provider are
// last-write-wins; callers needing stronger guarantees serialize above.
type Orchestrator struct {
	oauth    map[integration.Provider]config.OAuthApp
	store    store.Store
	registry *connectors.Registry
	states   *oauthstate.Manager

	httpClient *http.Client
	now        func() time.Time
	newID      func() string
}

// Option adjusts orchestrator construction.
type Option func(*Orchestrator)

// WithHTTPClient routes token exchanges through a specific client. Tests
// point this at httptest servers.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Orchestrator) { o.httpClient = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New wires the orchestrator. The oauth map holds per-provider app
// registrations; providers absent from it cannot use the redirect flow.
func New(oauth map[integration.Provider]config.OAuthApp, s store.Store, reg *connectors.Registry, states *oauthstate.Manager, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		oauth:    oauth,
		store:    s,
		registry: reg,
		states:   states,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AuthorizationURL builds the redirect URL for an OAuth-class provider and
// correlates it to a pending state token. An empty URL with a nil error means
// this deployment has no OAuth app registered for the provider.
func (o *Orchestrator) AuthorizationURL(provider integration.Provider, userID string) (string, error) {
	app, ok := o.oauth[provider]
	if !ok || !app.Configured() {
		return "", nil
	}

	state, err := o.states.Issue(provider, userID, app.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("issue oauth state: %w", err)
	}
	return oauthConfig(app).AuthCodeURL(state), nil
}

// HandleOAuthCallback consumes the state token, exchanges the code, probes
// the provider identity, and persists the connected config. An invalid state
// fails closed: no network call is made.
func (o *Orchestrator) HandleOAuthCallback(ctx context.Context, provider integration.Provider, code, state string) integration.ConnectionResult {
	pending, err := o.states.Consume(state)
	if err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues(string(provider), "failure").Inc()
		return integration.FailedConnection("invalid or expired state")
	}
	if pending.Provider != provider {
		metrics.ConnectAttemptsTotal.WithLabelValues(string(provider), "failure").Inc()
		return integration.FailedConnection("invalid or expired state")
	}

	app, ok := o.oauth[provider]
	if !ok || !app.Configured() {
		return integration.FailedConnection(fmt.Sprintf("oauth is not configured for provider %s", provider))
	}

	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}
	token, err := oauthConfig(app).Exchange(ctx, code)
	if err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues(string(provider), "failure").Inc()
		return integration.FailedConnection(fmt.Sprintf("token exchange failed: %v", err))
	}

	oauthCred := integration.OAuthCredential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		oauthCred.ExpiresAt = &expiry
	}
	if scope, ok := token.Extra("scope").(string); ok {
		oauthCred.Scope = scope
	}

	return o.finishConnect(ctx, provider, pending.UserID, integration.NewOAuthCredential(oauthCred), nil)
}

// ConnectWithCredentials validates user-supplied fields, probes the remote
// service, and persists the config only when the probe succeeds. A prior
// config for the provider stays untouched on failure.
func (o *Orchestrator) ConnectWithCredentials(ctx context.Context, provider integration.Provider, fields map[string]string, userID string) integration.ConnectionResult {
	cred, err := integration.CredentialFromFields(provider, fields)
	if err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues(string(provider), "failure").Inc()
		return integration.FailedConnection(err.Error())
	}
	return o.finishConnect(ctx, provider, userID, cred, settingsFromFields(fields))
}

// ConnectCloudCredentials is the typed entry point for the cloud provider's
// three-part credential. The probe is a caller-identity check.
func (o *Orchestrator) ConnectCloudCredentials(ctx context.Context, cred integration.CloudCredential, userID string, settings map[string]string) integration.ConnectionResult {
	wrapped := integration.NewCloudCredential(cred)
	if err := integration.CheckKindFor(integration.ProviderCloud, wrapped); err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues(string(integration.ProviderCloud), "failure").Inc()
		return integration.FailedConnection(err.Error())
	}
	return o.finishConnect(ctx, integration.ProviderCloud, userID, wrapped, settings)
}

// finishConnect is the shared back half of every connect path: build the
// concrete client, probe identity, persist, evict any stale cached client.
func (o *Orchestrator) finishConnect(ctx context.Context, provider integration.Provider, userID string, cred integration.Credential, settings map[string]string) integration.ConnectionResult {
	cfg := integration.Config{
		ID:         o.newID(),
		Provider:   provider,
		Status:     integration.StatusPending,
		Credential: &cred,
		Settings:   settings,
		UserID:     userID,
	}

	conn, err := o.registry.Build(cfg)
	if err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues(string(provider), "failure").Inc()
		return integration.FailedConnection(err.Error())
	}

	identity, err := conn.Identity(ctx)
	if err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues(string(provider), "failure").Inc()
		return integration.FailedConnection(fmt.Sprintf("credential validation failed: %v", err))
	}

	now := o.now()
	cfg.Status = integration.StatusConnected
	cfg.ConnectedAt = &now
	cfg.Metadata = identity.Metadata()

	if err := o.store.Save(ctx, cfg); err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues(string(provider), "failure").Inc()
		return integration.FailedConnection(fmt.Sprintf("persist config: %v", err))
	}

	// Reconnecting replaces the credential; a client built from the old one
	// must not survive.
	o.registry.Evict(provider)

	metrics.ConnectAttemptsTotal.WithLabelValues(string(provider), "success").Inc()
	slog.Info("provider connected", "provider", provider, "user_id", userID, "account", cfg.Metadata.AccountName)
	return integration.ConnectionResult{Success: true, Config: &cfg}
}

// Disconnect removes the persisted config and synchronously evicts the
// cached client. Disconnecting an absent provider is a no-op.
func (o *Orchestrator) Disconnect(ctx context.Context, provider integration.Provider) error {
	if err := o.store.Delete(ctx, provider); err != nil {
		return fmt.Errorf("delete config for %s: %w", provider, err)
	}
	o.registry.Evict(provider)
	slog.Info("provider disconnected", "provider", provider)
	return nil
}

// Sync runs one synchronization pass against a connected provider. It never
// panics and never returns an error: every failure shape lands in the
// result. A total failure does not downgrade the connection status.
func (o *Orchestrator) Sync(ctx context.Context, provider integration.Provider) integration.SyncResult {
	cfg, err := store.Find(ctx, o.store, provider)
	if errors.Is(err, store.ErrNotFound) {
		return o.failedSync(provider, fmt.Sprintf("provider %s is not connected", provider))
	}
	if err != nil {
		return o.failedSync(provider, fmt.Sprintf("load config: %v", err))
	}
	if !cfg.Connected() {
		return o.failedSync(provider, fmt.Sprintf("provider %s is not connected (status %s)", provider, cfg.Status))
	}

	conn, err := o.registry.Get(ctx, provider)
	if err != nil {
		return o.failedSync(provider, fmt.Sprintf("build connector: %v", err))
	}
	if conn == nil {
		return o.failedSync(provider, fmt.Sprintf("provider %s is not connected", provider))
	}

	start := o.now()
	report, err := conn.Sync(ctx)
	metrics.SyncDuration.WithLabelValues(string(provider)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues(string(provider), "failure").Inc()
		slog.Error("provider sync failed", "provider", provider, "err", err)
		return integration.FailedSync(provider, o.now(), err.Error())
	}

	finished := o.now()
	cfg.LastSyncAt = &finished
	result := integration.SyncResult{
		Success:     true,
		Provider:    provider,
		ItemsSynced: report.ItemsSynced,
		Errors:      report.Errors,
		Timestamp:   finished,
	}
	if err := o.store.Save(ctx, cfg); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("record last sync time: %v", err))
	}

	metrics.SyncRunsTotal.WithLabelValues(string(provider), "success").Inc()
	metrics.SyncLastSuccessTimestamp.WithLabelValues(string(provider)).Set(float64(finished.Unix()))
	metrics.ItemsSynced.WithLabelValues(string(provider)).Set(float64(report.ItemsSynced))
	slog.Info("provider sync complete", "provider", provider, "items", report.ItemsSynced, "item_errors", len(report.Errors))
	return result
}

// SyncAll fans out one sync per connected provider and waits for all of
// them. One provider's failure neither cancels nor delays the others; the
// only shared state between branches is the result slot each one owns.
func (o *Orchestrator) SyncAll(ctx context.Context) []integration.SyncResult {
	configs, err := o.store.Load(ctx)
	if err != nil {
		slog.Error("load configs for sync", "err", err)
		return nil
	}

	var connected []integration.Provider
	for _, cfg := range configs {
		if cfg.Connected() {
			connected = append(connected, cfg.Provider)
		}
	}
	if len(connected) == 0 {
		return nil
	}

	results := make([]integration.SyncResult, len(connected))
	var g errgroup.Group
	for i, provider := range connected {
		g.Go(func() error {
			results[i] = o.Sync(ctx, provider)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// GetConfig returns the persisted config for a provider, or
// store.ErrNotFound.
func (o *Orchestrator) GetConfig(ctx context.Context, provider integration.Provider) (integration.Config, error) {
	return store.Find(ctx, o.store, provider)
}

// Configs returns every persisted config.
func (o *Orchestrator) Configs(ctx context.Context) ([]integration.Config, error) {
	return o.store.Load(ctx)
}

func (o *Orchestrator) failedSync(provider integration.Provider, reason string) integration.SyncResult {
	metrics.SyncRunsTotal.WithLabelValues(string(provider), "failure").Inc()
	return integration.FailedSync(provider, o.now(), reason)
}

// settingsFromFields lifts recognized non-credential keys out of the raw
// field set so the connector builders can see them.
func settingsFromFields(fields map[string]string) map[string]string {
	settings := make(map[string]string)
	for _, key := range []string{"api_base", "team_id", "identity_store_id"} {
		if v := fields[key]; v != "" {
			settings[key] = v
		}
	}
	if len(settings) == 0 {
		return nil
	}
	return settings
}

func oauthConfig(app config.OAuthApp) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		RedirectURL:  app.RedirectURL,
		Scopes:       app.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  app.AuthURL,
			TokenURL: app.TokenURL,
		},
	}
}
