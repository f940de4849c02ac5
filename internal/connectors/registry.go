package connectors

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/taskdeck/taskdeck/internal/integration"
	"github.com/taskdeck/taskdeck/internal/store"
)

// Registry lazily builds and memoizes one client per connected provider.
// The orchestrator exclusively owns it; Evict must run synchronously on
// disconnect so a stale client is never reused after credential revocation.
type Registry struct {
	store    store.Store
	builders map[integration.Provider]Builder

	mu    sync.Mutex
	cache map[integration.Provider]Connector
}

// NewRegistry wires a registry over the persistence port and a builder table.
func NewRegistry(s store.Store, builders map[integration.Provider]Builder) *Registry {
	return &Registry{
		store:    s,
		builders: builders,
		cache:    make(map[integration.Provider]Connector),
	}
}

// Get returns the cached client for a provider, building it from the
// persisted config on miss. It returns (nil, nil) when the provider has no
// config or is not connected — absence is an expected state, not an error.
func (r *Registry) Get(ctx context.Context, provider integration.Provider) (Connector, error) {
	r.mu.Lock()
	if c, ok := r.cache[provider]; ok {
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	cfg, err := store.Find(ctx, r.store, provider)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !cfg.Connected() {
		return nil, nil
	}

	c, err := r.Build(cfg)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	// Another goroutine may have built the same client meanwhile; keep the
	// first one so callers share a single instance.
	if cached, ok := r.cache[provider]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.cache[provider] = c
	r.mu.Unlock()
	return c, nil
}

// Build constructs a client straight from a config without caching it. The
// orchestrator uses this to probe credentials before anything is persisted.
func (r *Registry) Build(cfg integration.Config) (Connector, error) {
	builder, ok := r.builders[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("no connector builder for provider %s", cfg.Provider)
	}
	if cfg.Credential == nil {
		return nil, fmt.Errorf("config for %s has no credential", cfg.Provider)
	}
	if err := integration.CheckKindFor(cfg.Provider, *cfg.Credential); err != nil {
		return nil, err
	}
	return builder(cfg)
}

// Evict drops the cached client for a provider.
func (r *Registry) Evict(provider integration.Provider) {
	r.mu.Lock()
	delete(r.cache, provider)
	r.mu.Unlock()
}
