// Package catalog wires the provider connector constructors into the builder
// table the registry dispatches on. Each builder consumes exactly the fields
// its provider's credential variant carries; anything else is a variant
// mismatch the registry rejects before the builder runs.
package catalog

import (
	"context"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/connectors"
	"github.com/taskdeck/taskdeck/internal/connectors/baas"
	"github.com/taskdeck/taskdeck/internal/connectors/cardboard"
	"github.com/taskdeck/taskdeck/internal/connectors/chat"
	"github.com/taskdeck/taskdeck/internal/connectors/cloud"
	"github.com/taskdeck/taskdeck/internal/connectors/deployplatform"
	"github.com/taskdeck/taskdeck/internal/connectors/designtool"
	"github.com/taskdeck/taskdeck/internal/connectors/mailbox"
	"github.com/taskdeck/taskdeck/internal/connectors/sourcehost"
	"github.com/taskdeck/taskdeck/internal/integration"
)

// SettingAPIBase overrides a connector's API endpoint, for self-hosted
// installs and tests.
const SettingAPIBase = "api_base"

// SettingTeamID scopes design-tool and deploy-platform inventories.
const SettingTeamID = "team_id"

// SettingIdentityStoreID enables the cloud connector's user inventory.
const SettingIdentityStoreID = "identity_store_id"

// Builders returns the default builder table. A nil httpClient lets each
// connector fall back to its own timeout-bounded client.
func Builders(httpClient *http.Client) map[integration.Provider]connectors.Builder {
	return map[integration.Provider]connectors.Builder{
		integration.ProviderSourceHost: func(cfg integration.Config) (connectors.Connector, error) {
			return sourcehost.New(cfg.Credential.OAuth.AccessToken, cfg.Settings[SettingAPIBase], httpClient)
		},
		integration.ProviderChat: func(cfg integration.Config) (connectors.Connector, error) {
			return chat.New(cfg.Credential.OAuth.AccessToken, cfg.Settings[SettingAPIBase], httpClient)
		},
		integration.ProviderDesignTool: func(cfg integration.Config) (connectors.Connector, error) {
			teamID := cfg.Settings[SettingTeamID]
			if teamID == "" {
				teamID = cfg.Metadata.TeamID
			}
			return designtool.New(cfg.Credential.OAuth.AccessToken, cfg.Settings[SettingAPIBase], teamID, httpClient)
		},
		integration.ProviderMailbox: func(cfg integration.Config) (connectors.Connector, error) {
			return mailbox.New(cfg.Credential.OAuth.AccessToken, cfg.Settings[SettingAPIBase], httpClient)
		},
		integration.ProviderCardBoard: func(cfg integration.Config) (connectors.Connector, error) {
			return cardboard.New(cfg.Credential.APIKey.APIKey, cfg.Credential.APIKey.Token, cfg.Settings[SettingAPIBase], httpClient)
		},
		integration.ProviderDeployPlatform: func(cfg integration.Config) (connectors.Connector, error) {
			teamID := cfg.Settings[SettingTeamID]
			if teamID == "" {
				teamID = cfg.Metadata.TeamID
			}
			return deployplatform.New(cfg.Credential.APIKey.Token, teamID, cfg.Settings[SettingAPIBase], httpClient)
		},
		integration.ProviderBaaS: func(cfg integration.Config) (connectors.Connector, error) {
			return baas.New(cfg.Credential.APIKey.APIKey, cfg.Credential.APIKey.Token, cfg.Settings[SettingAPIBase], httpClient)
		},
		integration.ProviderCloud: func(cfg integration.Config) (connectors.Connector, error) {
			return cloud.New(context.Background(), cloud.Options{
				AccessKeyID:     cfg.Credential.Cloud.AccessKeyID,
				SecretAccessKey: cfg.Credential.Cloud.SecretAccessKey,
				Region:          cfg.Credential.Cloud.Region,
				SessionToken:    cfg.Credential.Cloud.SessionToken,
				IdentityStoreID: cfg.Settings[SettingIdentityStoreID],
			})
		},
	}
}
