package integration

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CredentialKind discriminates the credential union. Exactly one variant is
// populated per credential; consumers switch on the kind rather than probing
// fields.
type CredentialKind string

const (
	CredentialKindOAuth  CredentialKind = "oauth"
	CredentialKindAPIKey CredentialKind = "api_key"
	CredentialKindCloud  CredentialKind = "cloud"
)

// OAuthCredential is the token material produced by an authorization-code
// exchange.
type OAuthCredential struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	TokenType    string     `json:"token_type,omitempty"`
	Scope        string     `json:"scope,omitempty"`
}

// APIKeyCredential is a user-supplied static key/token pair.
type APIKeyCredential struct {
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
	Token     string `json:"token,omitempty"`
}

// CloudCredential is the three-part cloud access credential.
type CloudCredential struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Region          string `json:"region"`
	SessionToken    string `json:"session_token,omitempty"`
}

// Credential is the tagged union over the three auth shapes.
type Credential struct {
	Kind   CredentialKind    `json:"kind"`
	OAuth  *OAuthCredential  `json:"oauth,omitempty"`
	APIKey *APIKeyCredential `json:"api_key,omitempty"`
	Cloud  *CloudCredential  `json:"cloud,omitempty"`
}

// NewOAuthCredential builds an oauth-kind credential.
func NewOAuthCredential(c OAuthCredential) Credential {
	return Credential{Kind: CredentialKindOAuth, OAuth: &c}
}

// NewAPIKeyCredential builds an api-key-kind credential.
func NewAPIKeyCredential(c APIKeyCredential) Credential {
	return Credential{Kind: CredentialKindAPIKey, APIKey: &c}
}

// NewCloudCredential builds a cloud-kind credential.
func NewCloudCredential(c CloudCredential) Credential {
	return Credential{Kind: CredentialKindCloud, Cloud: &c}
}

// Validate enforces the union invariant: the kind is known, the matching
// variant is populated, and no other variant is set.
func (c Credential) Validate() error {
	switch c.Kind {
	case CredentialKindOAuth:
		if c.OAuth == nil {
			return errors.New("oauth credential variant is empty")
		}
		if c.APIKey != nil || c.Cloud != nil {
			return errors.New("oauth credential carries extra variants")
		}
		if strings.TrimSpace(c.OAuth.AccessToken) == "" {
			return errors.New("oauth access token is required")
		}
	case CredentialKindAPIKey:
		if c.APIKey == nil {
			return errors.New("api key credential variant is empty")
		}
		if c.OAuth != nil || c.Cloud != nil {
			return errors.New("api key credential carries extra variants")
		}
		if strings.TrimSpace(c.APIKey.APIKey) == "" && strings.TrimSpace(c.APIKey.Token) == "" {
			return errors.New("api key credential needs a key or token")
		}
	case CredentialKindCloud:
		if c.Cloud == nil {
			return errors.New("cloud credential variant is empty")
		}
		if c.OAuth != nil || c.APIKey != nil {
			return errors.New("cloud credential carries extra variants")
		}
		if strings.TrimSpace(c.Cloud.AccessKeyID) == "" {
			return errors.New("cloud access key id is required")
		}
		if strings.TrimSpace(c.Cloud.SecretAccessKey) == "" {
			return errors.New("cloud secret access key is required")
		}
		if strings.TrimSpace(c.Cloud.Region) == "" {
			return errors.New("cloud region is required")
		}
	default:
		return fmt.Errorf("unknown credential kind %q", c.Kind)
	}
	return nil
}

// CheckKindFor fails fast when a credential variant is offered to a provider
// that accepts a different one. Per the connection contract this is a
// programming error, not a recoverable runtime condition.
func CheckKindFor(p Provider, c Credential) error {
	want := CredentialKindFor(p)
	if want == "" {
		return fmt.Errorf("unknown provider %q", p)
	}
	if c.Kind != want {
		return fmt.Errorf("provider %s requires a %s credential, got %s", p, want, c.Kind)
	}
	return c.Validate()
}

// ValidateFields checks a raw user-supplied field set against the provider's
// required fields before anything touches the network.
func ValidateFields(p Provider, fields map[string]string) error {
	required := RequiredFields(p)
	if required == nil {
		return fmt.Errorf("provider %s does not accept raw credential fields", p)
	}
	var missing []string
	for _, name := range required {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("provider %s missing required fields: %s", p, strings.Join(missing, ", "))
	}
	return nil
}

// CredentialFromFields constructs the provider's credential variant from a
// validated raw field set.
func CredentialFromFields(p Provider, fields map[string]string) (Credential, error) {
	if err := ValidateFields(p, fields); err != nil {
		return Credential{}, err
	}
	get := func(name string) string { return strings.TrimSpace(fields[name]) }
	switch CredentialKindFor(p) {
	case CredentialKindAPIKey:
		return NewAPIKeyCredential(APIKeyCredential{
			APIKey:    get("api_key"),
			APISecret: get("api_secret"),
			Token:     get("token"),
		}), nil
	case CredentialKindCloud:
		return NewCloudCredential(CloudCredential{
			AccessKeyID:     get("access_key_id"),
			SecretAccessKey: get("secret_access_key"),
			Region:          get("region"),
			SessionToken:    get("session_token"),
		}), nil
	default:
		return Credential{}, fmt.Errorf("provider %s connects via the oauth redirect flow", p)
	}
}

// MaskSecret hides all but the tail of a secret for display and logging.
func MaskSecret(secret string) string {
	s := strings.TrimSpace(secret)
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// Masked returns a copy of the credential with every secret field masked.
// Read accessors and API responses must never expose raw material.
func (c Credential) Masked() Credential {
	out := Credential{Kind: c.Kind}
	switch {
	case c.OAuth != nil:
		masked := *c.OAuth
		masked.AccessToken = MaskSecret(masked.AccessToken)
		masked.RefreshToken = MaskSecret(masked.RefreshToken)
		out.OAuth = &masked
	case c.APIKey != nil:
		masked := *c.APIKey
		masked.APIKey = MaskSecret(masked.APIKey)
		masked.APISecret = MaskSecret(masked.APISecret)
		masked.Token = MaskSecret(masked.Token)
		out.APIKey = &masked
	case c.Cloud != nil:
		masked := *c.Cloud
		masked.SecretAccessKey = MaskSecret(masked.SecretAccessKey)
		masked.SessionToken = MaskSecret(masked.SessionToken)
		out.Cloud = &masked
	}
	return out
}
