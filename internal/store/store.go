// Package store defines the persistence port for integration configs and its
// durable implementations. The orchestrator treats the store as authoritative
// and never trusts an in-memory copy over a failed write.
package store

import (
	"context"
	"errors"

	"github.com/taskdeck/taskdeck/internal/integration"
)

// ErrNotFound is returned by Find when no config exists for a provider.
var ErrNotFound = errors.New("integration config not found")

// Store is the minimal load/save/delete contract over integration configs,
// keyed by provider.
type Store interface {
	Load(ctx context.Context) ([]integration.Config, error)
	Save(ctx context.Context, cfg integration.Config) error
	Delete(ctx context.Context, provider integration.Provider) error
}

// Find scans the store for a single provider's config. The provider set is
// small and fixed, so a full load is the lookup.
func Find(ctx context.Context, s Store, provider integration.Provider) (integration.Config, error) {
	configs, err := s.Load(ctx)
	if err != nil {
		return integration.Config{}, err
	}
	for _, cfg := range configs {
		if cfg.Provider == provider {
			return cfg, nil
		}
	}
	return integration.Config{}, ErrNotFound
}
