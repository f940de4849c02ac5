package config

import (
	"strings"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/integration"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want :9090", cfg.MetricsAddr)
	}
	if cfg.StoreDriver != StoreDriverBolt {
		t.Errorf("StoreDriver = %q, want bolt", cfg.StoreDriver)
	}
	if cfg.SyncInterval != 15*time.Minute {
		t.Errorf("SyncInterval = %v, want 15m", cfg.SyncInterval)
	}

	// Endpoint defaults are present, but without client id/secret no
	// provider is usable for the redirect flow.
	app := cfg.OAuth[integration.ProviderSourceHost]
	if app.AuthURL == "" || app.TokenURL == "" {
		t.Errorf("source_host oauth endpoints missing: %+v", app)
	}
	if app.Configured() {
		t.Error("source_host reports configured without client credentials")
	}
}

func TestLoad_OAuthAppFromEnv(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://taskdeck.example/")
	t.Setenv("OAUTH_CHAT_CLIENT_ID", "chat-id")
	t.Setenv("OAUTH_CHAT_CLIENT_SECRET", "chat-secret")
	t.Setenv("OAUTH_CHAT_SCOPES", "channels:read, users:read")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}

	app := cfg.OAuth[integration.ProviderChat]
	if !app.Configured() {
		t.Fatalf("chat app not configured: %+v", app)
	}
	if app.ClientID != "chat-id" {
		t.Errorf("ClientID = %q", app.ClientID)
	}
	if want := "https://taskdeck.example/oauth/callback/chat"; app.RedirectURL != want {
		t.Errorf("RedirectURL = %q, want %q", app.RedirectURL, want)
	}
	if len(app.Scopes) != 2 || app.Scopes[1] != "users:read" {
		t.Errorf("Scopes = %v, want trimmed split", app.Scopes)
	}
}

func TestLoad_ExplicitRedirectURLWins(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://taskdeck.example")
	t.Setenv("OAUTH_MAILBOX_REDIRECT_URL", "https://other.example/cb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if got := cfg.OAuth[integration.ProviderMailbox].RedirectURL; got != "https://other.example/cb" {
		t.Errorf("RedirectURL = %q, want explicit value", got)
	}
}

func TestLoad_StoreDriverValidation(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "STORE_DRIVER") {
		t.Fatalf("Load() err = %v, want STORE_DRIVER error", err)
	}
}

func TestLoad_PostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("Load() err = %v, want DATABASE_URL error", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/taskdeck")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Errorf("StoreDriver = %q", cfg.StoreDriver)
	}
}

func TestLoad_SyncInterval(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "90s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if cfg.SyncInterval != 90*time.Second {
		t.Errorf("SyncInterval = %v, want 90s", cfg.SyncInterval)
	}

	// Unparseable values fall back to the default rather than failing.
	t.Setenv("SYNC_INTERVAL", "soon")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if cfg.SyncInterval != 15*time.Minute {
		t.Errorf("SyncInterval = %v, want default", cfg.SyncInterval)
	}
}
