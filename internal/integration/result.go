package integration

import "time"

// SyncResult is the immutable outcome of one synchronization attempt.
// Partial success is success: Success stays true as long as the provider was
// reachable, with per-item failures collected in Errors.
type SyncResult struct {
	Success     bool      `json:"success"`
	Provider    Provider  `json:"provider"`
	ItemsSynced int       `json:"items_synced"`
	Errors      []string  `json:"errors,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// FailedSync builds the failed-result shape used for total failures and
// disconnected-state misuse: zero items, a descriptive error, never a panic.
func FailedSync(p Provider, now time.Time, reason string) SyncResult {
	return SyncResult{
		Success:     false,
		Provider:    p,
		ItemsSynced: 0,
		Errors:      []string{reason},
		Timestamp:   now,
	}
}

// ConnectionResult is the outcome of a connect attempt (OAuth callback or raw
// credential submission).
type ConnectionResult struct {
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
	Config  *Config `json:"config,omitempty"`
}

// FailedConnection builds a failure result with a caller-facing reason.
func FailedConnection(reason string) ConnectionResult {
	return ConnectionResult{Success: false, Error: reason}
}
