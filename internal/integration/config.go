package integration

import (
	"fmt"
	"time"
)

// ConnectionStatus is the lifecycle state of one provider connection.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusError        ConnectionStatus = "error"
	StatusPending      ConnectionStatus = "pending"
)

// Metadata is display information captured from the provider's identity
// probe at connect time.
type Metadata struct {
	AccountName   string `json:"account_name,omitempty"`
	AccountEmail  string `json:"account_email,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	WorkspaceName string `json:"workspace_name,omitempty"`
	TeamID        string `json:"team_id,omitempty"`
}

// Config is the persisted record of one user's connection to one provider.
// The store owns it; the orchestrator only ever holds a transient copy
// mirrored from or about to be written to storage. One record exists per
// (provider, user) pair — reconnecting overwrites.
type Config struct {
	ID          string            `json:"id"`
	Provider    Provider          `json:"provider"`
	Status      ConnectionStatus  `json:"status"`
	Credential  *Credential       `json:"credential,omitempty"`
	Settings    map[string]string `json:"settings,omitempty"`
	ConnectedAt *time.Time        `json:"connected_at,omitempty"`
	LastSyncAt  *time.Time        `json:"last_sync_at,omitempty"`
	UserID      string            `json:"user_id"`
	Metadata    Metadata          `json:"metadata"`
}

// Connected reports whether the record is in the connected state with a
// usable credential.
func (c Config) Connected() bool {
	return c.Status == StatusConnected && c.Credential != nil
}

// Validate checks the envelope before it is written to the store.
func (c Config) Validate() error {
	if !c.Provider.Valid() {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.Status {
	case StatusConnected, StatusDisconnected, StatusError, StatusPending:
	default:
		return fmt.Errorf("unknown connection status %q", c.Status)
	}
	if c.Status == StatusConnected {
		if c.Credential == nil {
			return fmt.Errorf("connected config for %s has no credential", c.Provider)
		}
		if err := CheckKindFor(c.Provider, *c.Credential); err != nil {
			return err
		}
	}
	return nil
}

// Masked returns a copy safe for read accessors: credential secrets hidden,
// everything else intact.
func (c Config) Masked() Config {
	out := c
	if c.Credential != nil {
		masked := c.Credential.Masked()
		out.Credential = &masked
	}
	return out
}
