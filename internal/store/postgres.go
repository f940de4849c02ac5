package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/taskdeck/internal/integration"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS integration_configs (
    provider   text PRIMARY KEY,
    config     jsonb NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now()
)`

// Postgres persists integration configs in a single jsonb-backed table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres ensures the table exists and returns the store. The pool stays
// owned by the caller.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("init postgres store: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Load(ctx context.Context) ([]integration.Config, error) {
	rows, err := p.pool.Query(ctx, `SELECT provider, config FROM integration_configs ORDER BY provider`)
	if err != nil {
		return nil, fmt.Errorf("load integration configs: %w", err)
	}
	defer rows.Close()

	var out []integration.Config
	for rows.Next() {
		var provider string
		var raw []byte
		if err := rows.Scan(&provider, &raw); err != nil {
			return nil, err
		}
		var cfg integration.Config
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode config for %s: %w", provider, err)
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (p *Postgres) Save(ctx context.Context, cfg integration.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config for %s: %w", cfg.Provider, err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO integration_configs (provider, config, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (provider) DO UPDATE SET config = EXCLUDED.config, updated_at = now()`,
		string(cfg.Provider), raw)
	if err != nil {
		return fmt.Errorf("save config for %s: %w", cfg.Provider, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, provider integration.Provider) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM integration_configs WHERE provider = $1`, string(provider)); err != nil {
		return fmt.Errorf("delete config for %s: %w", provider, err)
	}
	return nil
}
