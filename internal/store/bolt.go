package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/taskdeck/taskdeck/internal/integration"
)

const boltBucketIntegrations = "integrations" // key: provider -> Config JSON

// Bolt persists integration configs in an embedded bbolt database. It is the
// default durable store when no database URL is configured.
type Bolt struct {
	db *bbolt.DB
}

// NewBolt opens (or creates) the database at path and ensures the bucket
// exists.
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketIntegrations))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bolt store: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close closes the underlying database.
func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) Load(ctx context.Context) ([]integration.Config, error) {
	var out []integration.Config
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketIntegrations))
		return bucket.ForEach(func(k, v []byte) error {
			var cfg integration.Config
			if err := json.Unmarshal(v, &cfg); err != nil {
				return fmt.Errorf("decode config for %s: %w", string(k), err)
			}
			out = append(out, cfg)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bolt) Save(ctx context.Context, cfg integration.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config for %s: %w", cfg.Provider, err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketIntegrations)).Put([]byte(cfg.Provider), raw)
	})
}

func (b *Bolt) Delete(ctx context.Context, provider integration.Provider) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketIntegrations)).Delete([]byte(provider))
	})
}
