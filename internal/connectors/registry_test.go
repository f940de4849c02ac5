package connectors

import (
	"context"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/integration"
	"github.com/taskdeck/taskdeck/internal/store"
)

type fakeConnector struct {
	provider integration.Provider
	token    string
}

func (f *fakeConnector) Provider() integration.Provider { return f.provider }

func (f *fakeConnector) Identity(ctx context.Context) (Identity, error) {
	return Identity{AccountName: "fake"}, nil
}

func (f *fakeConnector) Sync(ctx context.Context) (Report, error) {
	return Report{ItemsSynced: 1}, nil
}

func fakeBuilders(buildCount *int) map[integration.Provider]Builder {
	return map[integration.Provider]Builder{
		integration.ProviderChat: func(cfg integration.Config) (Connector, error) {
			*buildCount++
			return &fakeConnector{provider: cfg.Provider, token: cfg.Credential.OAuth.AccessToken}, nil
		},
	}
}

func connectedConfig(p integration.Provider) integration.Config {
	cred := integration.NewOAuthCredential(integration.OAuthCredential{AccessToken: "tok"})
	now := time.Now()
	return integration.Config{
		ID:          "id-1",
		Provider:    p,
		Status:      integration.StatusConnected,
		Credential:  &cred,
		ConnectedAt: &now,
		UserID:      "u1",
	}
}

func TestRegistry_GetReturnsNilForAbsentProvider(t *testing.T) {
	t.Parallel()

	var builds int
	reg := NewRegistry(store.NewMemory(), fakeBuilders(&builds))

	c, err := reg.Get(context.Background(), integration.ProviderChat)
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if c != nil {
		t.Fatalf("Get() = %v, want nil for absent provider", c)
	}
	if builds != 0 {
		t.Fatalf("builder ran %d times for absent provider", builds)
	}
}

func TestRegistry_GetReturnsNilForDisconnectedProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemory()
	cfg := connectedConfig(integration.ProviderChat)
	cfg.Status = integration.StatusError
	if err := st.Save(ctx, cfg); err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	var builds int
	reg := NewRegistry(st, fakeBuilders(&builds))

	c, err := reg.Get(ctx, integration.ProviderChat)
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if c != nil {
		t.Fatal("Get() built a client for a non-connected config")
	}
}

func TestRegistry_GetMemoizes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemory()
	if err := st.Save(ctx, connectedConfig(integration.ProviderChat)); err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	var builds int
	reg := NewRegistry(st, fakeBuilders(&builds))

	first, err := reg.Get(ctx, integration.ProviderChat)
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	second, err := reg.Get(ctx, integration.ProviderChat)
	if err != nil {
		t.Fatalf("Get() second err = %v", err)
	}
	if first != second {
		t.Error("Get() returned different instances for the same provider")
	}
	if builds != 1 {
		t.Errorf("builder ran %d times, want 1", builds)
	}
}

func TestRegistry_EvictForcesRebuildWithFreshCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemory()
	if err := st.Save(ctx, connectedConfig(integration.ProviderChat)); err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	var builds int
	reg := NewRegistry(st, fakeBuilders(&builds))

	first, err := reg.Get(ctx, integration.ProviderChat)
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}

	// Reconnect with a new token, then evict: the next Get must see it.
	cfg := connectedConfig(integration.ProviderChat)
	cfg.Credential.OAuth.AccessToken = "tok-2"
	if err := st.Save(ctx, cfg); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	reg.Evict(integration.ProviderChat)

	second, err := reg.Get(ctx, integration.ProviderChat)
	if err != nil {
		t.Fatalf("Get() after evict err = %v", err)
	}
	if second == first {
		t.Error("Get() after Evict() returned the stale client")
	}
	if got := second.(*fakeConnector).token; got != "tok-2" {
		t.Errorf("rebuilt client token = %q, want %q", got, "tok-2")
	}
	if builds != 2 {
		t.Errorf("builder ran %d times, want 2", builds)
	}
}

func TestRegistry_BuildRejectsMismatchedCredential(t *testing.T) {
	t.Parallel()

	var builds int
	reg := NewRegistry(store.NewMemory(), fakeBuilders(&builds))

	cred := integration.NewAPIKeyCredential(integration.APIKeyCredential{APIKey: "k", Token: "t"})
	cfg := integration.Config{
		Provider:   integration.ProviderChat,
		Status:     integration.StatusPending,
		Credential: &cred,
	}
	if _, err := reg.Build(cfg); err == nil {
		t.Fatal("Build() with mismatched credential kind err = nil")
	}
	if builds != 0 {
		t.Fatalf("builder ran %d times despite variant mismatch", builds)
	}

	cfg.Credential = nil
	if _, err := reg.Build(cfg); err == nil {
		t.Fatal("Build() without credential err = nil")
	}

	cfg.Provider = integration.ProviderMailbox
	if _, err := reg.Build(cfg); err == nil {
		t.Fatal("Build() for provider without a builder err = nil")
	}
}
