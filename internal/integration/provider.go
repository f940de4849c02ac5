// Package integration holds the domain model shared by the store, the
// connector registry, and the orchestrator: provider identifiers, the
// credential union, connection envelopes, and sync outcomes.
package integration

import (
	"fmt"
	"strings"
)

// Provider identifies one external third-party service. The set is closed;
// adding a provider means touching CredentialKindFor, RequiredFields, and the
// connector builder table, all of which switch exhaustively.
type Provider string

const (
	ProviderSourceHost     Provider = "source_host"
	ProviderChat           Provider = "chat"
	ProviderDesignTool     Provider = "design_tool"
	ProviderCardBoard      Provider = "card_board"
	ProviderMailbox        Provider = "mailbox"
	ProviderDeployPlatform Provider = "deploy_platform"
	ProviderBaaS           Provider = "baas"
	ProviderCloud          Provider = "cloud"
)

// Providers returns every known provider in display order.
func Providers() []Provider {
	return []Provider{
		ProviderSourceHost,
		ProviderChat,
		ProviderDesignTool,
		ProviderCardBoard,
		ProviderMailbox,
		ProviderDeployPlatform,
		ProviderBaaS,
		ProviderCloud,
	}
}

// ParseProvider normalizes and validates a provider name.
func ParseProvider(raw string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case ProviderSourceHost, ProviderChat, ProviderDesignTool, ProviderCardBoard,
		ProviderMailbox, ProviderDeployPlatform, ProviderBaaS, ProviderCloud:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q", raw)
	}
}

// Valid reports whether p is a member of the closed provider set.
func (p Provider) Valid() bool {
	_, err := ParseProvider(string(p))
	return err == nil
}

func (p Provider) String() string {
	return string(p)
}

// DisplayName returns the human-readable provider label.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderSourceHost:
		return "Source Host"
	case ProviderChat:
		return "Chat"
	case ProviderDesignTool:
		return "Design Tool"
	case ProviderCardBoard:
		return "Card Board"
	case ProviderMailbox:
		return "Mailbox"
	case ProviderDeployPlatform:
		return "Deploy Platform"
	case ProviderBaaS:
		return "Backend-as-a-Service"
	case ProviderCloud:
		return "Cloud"
	default:
		return string(p)
	}
}

// CredentialKindFor returns the single credential variant a provider accepts.
func CredentialKindFor(p Provider) CredentialKind {
	switch p {
	case ProviderSourceHost, ProviderChat, ProviderDesignTool, ProviderMailbox:
		return CredentialKindOAuth
	case ProviderCardBoard, ProviderDeployPlatform, ProviderBaaS:
		return CredentialKindAPIKey
	case ProviderCloud:
		return CredentialKindCloud
	default:
		return ""
	}
}

// RequiredFields lists the raw credential fields a user must supply to
// connect a non-OAuth provider. OAuth providers take no form fields; the
// redirect flow supplies everything.
func RequiredFields(p Provider) []string {
	switch p {
	case ProviderCardBoard:
		return []string{"api_key", "token"}
	case ProviderDeployPlatform:
		return []string{"token"}
	case ProviderBaaS:
		return []string{"api_key", "token"}
	case ProviderCloud:
		return []string{"access_key_id", "secret_access_key", "region"}
	default:
		return nil
	}
}

// OptionalFields lists recognized but non-mandatory credential fields.
func OptionalFields(p Provider) []string {
	switch p {
	case ProviderDeployPlatform:
		return []string{"team_id"}
	case ProviderCloud:
		return []string{"session_token"}
	default:
		return nil
	}
}
