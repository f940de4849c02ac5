// Package oauthstate guards the redirect-based authorization flow. Every
// authorization attempt gets a signed, timestamped, single-use state token;
// the callback must return it verbatim or the attempt fails closed.
package oauthstate

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/internal/integration"
)

// TTL bounds how long an issued state token stays consumable. An abandoned
// authorization attempt expires here rather than through the connection
// status lifecycle.
const TTL = 10 * time.Minute

// ErrInvalidState covers every consume failure: unknown, expired, reused, or
// tampered tokens. Callers must treat it as an authentication failure, not
// retry.
var ErrInvalidState = errors.New("invalid or expired oauth state")

// State is the correlation tuple behind one pending authorization.
type State struct {
	Provider    integration.Provider `json:"provider"`
	UserID      string               `json:"user_id"`
	RedirectURL string               `json:"redirect_url"`
	Timestamp   time.Time            `json:"timestamp"`
	Nonce       string               `json:"nonce"`
}

// Manager issues and consumes state tokens. The table is in-memory only; a
// process restart invalidates all pending authorizations, which forces the
// user to restart the flow instead of risking a stale correlation.
type Manager struct {
	secret []byte
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]State
}

// Option adjusts manager construction.
type Option func(*Manager)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a manager. With an empty secret a random per-process key is
// generated, so tokens never survive a restart.
func New(secret []byte, opts ...Option) (*Manager, error) {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate state secret: %w", err)
		}
	}
	m := &Manager{
		secret:  secret,
		now:     time.Now,
		pending: make(map[string]State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue creates a token for one authorization attempt and retains it until
// consumed or expired.
func (m *Manager) Issue(provider integration.Provider, userID, redirectURL string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate state nonce: %w", err)
	}

	state := State{
		Provider:    provider,
		UserID:      userID,
		RedirectURL: redirectURL,
		Timestamp:   m.now(),
		Nonce:       hex.EncodeToString(nonce),
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	token := encodePayload(payload) + "." + m.sign(payload)

	m.mu.Lock()
	m.sweepLocked()
	m.pending[token] = state
	m.mu.Unlock()

	return token, nil
}

// Consume validates a token and deletes it. A token consumes at most once;
// the second call with the same token returns ErrInvalidState.
func (m *Manager) Consume(token string) (State, error) {
	payload, sig, ok := splitToken(token)
	if !ok {
		return State{}, ErrInvalidState
	}
	if !hmac.Equal([]byte(m.sign(payload)), []byte(sig)) {
		return State{}, ErrInvalidState
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.pending[token]
	if !exists {
		return State{}, ErrInvalidState
	}
	delete(m.pending, token)

	if m.now().Sub(state.Timestamp) > TTL {
		return State{}, ErrInvalidState
	}
	return state, nil
}

// Pending reports how many unconsumed tokens are retained. Used by tests and
// diagnostics.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// sweepLocked drops expired entries to bound memory. Called opportunistically
// on every issue under the table lock.
func (m *Manager) sweepLocked() {
	cutoff := m.now().Add(-TTL)
	for token, state := range m.pending {
		if state.Timestamp.Before(cutoff) {
			delete(m.pending, token)
		}
	}
}

func (m *Manager) sign(payload []byte) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func encodePayload(payload []byte) string {
	return base64.RawURLEncoding.EncodeToString(payload)
}

func splitToken(token string) (payload []byte, sig string, ok bool) {
	idx := strings.LastIndexByte(token, '.')
	if idx <= 0 || idx == len(token)-1 {
		return nil, "", false
	}
	payload, err := base64.RawURLEncoding.DecodeString(token[:idx])
	if err != nil {
		return nil, "", false
	}
	return payload, token[idx+1:], true
}
