// Package config loads the service configuration from the environment once,
// at command startup. Business logic never reads env vars; it receives this
// struct.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskdeck/taskdeck/internal/integration"
)

const (
	defaultHTTPAddr     = ":8080"
	defaultMetricsAddr  = ":9090"
	defaultBoltPath     = "taskdeck-integrations.db"
	defaultSyncInterval = 15 * time.Minute
)

// Store driver names.
const (
	StoreDriverBolt     = "bolt"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// OAuthApp is one provider's OAuth application registration. A provider with
// no registration simply cannot use the redirect flow in this deployment;
// that is an expected state, not an error.
type OAuthApp struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// Configured reports whether the registration is usable.
func (a OAuthApp) Configured() bool {
	return a.ClientID != "" && a.ClientSecret != "" && a.RedirectURL != "" &&
		a.AuthURL != "" && a.TokenURL != ""
}

type Config struct {
	HTTPAddr      string
	MetricsAddr   string
	PublicBaseURL string

	StoreDriver string
	BoltPath    string
	DatabaseURL string

	SyncInterval     time.Duration
	OAuthStateSecret string
	WebhookSecret    string

	OAuth map[integration.Provider]OAuthApp
}

// oauthDefaults carries the well-known endpoints and scopes per OAuth-class
// provider. Client id/secret always come from the deployment.
var oauthDefaults = map[integration.Provider]OAuthApp{
	integration.ProviderSourceHost: {
		AuthURL:  "https://github.com/login/oauth/authorize",
		TokenURL: "https://github.com/login/oauth/access_token",
		Scopes:   []string{"repo", "read:user", "user:email"},
	},
	integration.ProviderChat: {
		AuthURL:  "https://slack.com/oauth/v2/authorize",
		TokenURL: "https://slack.com/api/oauth.v2.access",
		Scopes:   []string{"channels:read", "chat:write", "users:read"},
	},
	integration.ProviderDesignTool: {
		AuthURL:  "https://www.figma.com/oauth",
		TokenURL: "https://www.figma.com/api/oauth/token",
		Scopes:   []string{"file_read"},
	},
	integration.ProviderMailbox: {
		AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
		Scopes:   []string{"https://www.googleapis.com/auth/gmail.readonly"},
	},
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		HTTPAddr:         getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:      getenvDefault("METRICS_ADDR", defaultMetricsAddr),
		PublicBaseURL:    strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		StoreDriver:      strings.ToLower(getenvDefault("STORE_DRIVER", StoreDriverBolt)),
		BoltPath:         getenvDefault("BOLT_PATH", defaultBoltPath),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SyncInterval:     defaultSyncInterval,
		OAuthStateSecret: os.Getenv("OAUTH_STATE_SECRET"),
		WebhookSecret:    os.Getenv("WEBHOOK_SECRET"),
		OAuth:            make(map[integration.Provider]OAuthApp),
	}

	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SyncInterval = d
		}
	}

	switch cfg.StoreDriver {
	case StoreDriverBolt, StoreDriverPostgres, StoreDriverMemory:
	default:
		return Config{}, errors.New("STORE_DRIVER must be one of: bolt, postgres, memory")
	}
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
	}

	for provider, defaults := range oauthDefaults {
		app := loadOAuthApp(provider, defaults)
		if app.RedirectURL == "" && cfg.PublicBaseURL != "" {
			app.RedirectURL = cfg.PublicBaseURL + "/oauth/callback/" + string(provider)
		}
		cfg.OAuth[provider] = app
	}

	return cfg, nil
}

func loadOAuthApp(provider integration.Provider, defaults OAuthApp) OAuthApp {
	prefix := "OAUTH_" + strings.ToUpper(string(provider)) + "_"
	app := OAuthApp{
		ClientID:     strings.TrimSpace(os.Getenv(prefix + "CLIENT_ID")),
		ClientSecret: strings.TrimSpace(os.Getenv(prefix + "CLIENT_SECRET")),
		RedirectURL:  strings.TrimSpace(os.Getenv(prefix + "REDIRECT_URL")),
		AuthURL:      getenvDefault(prefix+"AUTH_URL", defaults.AuthURL),
		TokenURL:     getenvDefault(prefix+"TOKEN_URL", defaults.TokenURL),
		Scopes:       defaults.Scopes,
	}
	if v := strings.TrimSpace(os.Getenv(prefix + "SCOPES")); v != "" {
		app.Scopes = strings.Split(v, ",")
		for i := range app.Scopes {
			app.Scopes[i] = strings.TrimSpace(app.Scopes[i])
		}
	}
	return app
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
