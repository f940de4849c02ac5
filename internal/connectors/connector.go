// Package connectors defines the construction contract every provider client
// fulfils and the registry that lazily builds and caches one client per
// connected provider.
package connectors

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/integration"
)

// Identity is the result of a provider's cheap identity or health probe.
// Connecting only succeeds once this call does.
type Identity struct {
	AccountID     string
	AccountName   string
	AccountEmail  string
	AvatarURL     string
	WorkspaceName string
	TeamID        string
}

// Metadata converts the probe result into the persisted display metadata.
func (i Identity) Metadata() integration.Metadata {
	return integration.Metadata{
		AccountName:   i.AccountName,
		AccountEmail:  i.AccountEmail,
		AvatarURL:     i.AvatarURL,
		WorkspaceName: i.WorkspaceName,
		TeamID:        i.TeamID,
	}
}

// Report is the outcome of one bulk item pass: a count of successfully
// processed items plus any per-item failures. A non-nil error from Sync means
// the provider itself was unreachable.
type Report struct {
	ItemsSynced int
	Errors      []string
}

// Connector is the concrete client for one provider's native API.
type Connector interface {
	Provider() integration.Provider

	// Identity performs the cheap identity/health probe.
	Identity(ctx context.Context) (Identity, error)

	// Sync runs the bulk item accessor. Per-item failures land in the
	// report; an error return is reserved for total failure to reach the
	// provider.
	Sync(ctx context.Context) (Report, error)
}

// Builder constructs a provider's client from a stored config. It must
// accept exactly the fields the provider's credential variant carries and
// fail fast on a variant mismatch.
type Builder func(cfg integration.Config) (Connector, error)
