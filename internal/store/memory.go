package store

import (
	"context"
	"sort"
	"sync"

	"github.com/taskdeck/taskdeck/internal/integration"
)

// Memory is a threadsafe in-process store. It backs tests and deployments
// that accept losing connections on restart.
type Memory struct {
	mu      sync.RWMutex
	configs map[integration.Provider]integration.Config
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{configs: make(map[integration.Provider]integration.Config)}
}

func (m *Memory) Load(ctx context.Context) ([]integration.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]integration.Config, 0, len(m.configs))
	for _, cfg := range m.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}

func (m *Memory) Save(ctx context.Context, cfg integration.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.Provider] = cfg
	return nil
}

func (m *Memory) Delete(ctx context.Context, provider integration.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.configs, provider)
	return nil
}
