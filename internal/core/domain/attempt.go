package domain

import "time"

// Credentials is the username/password pair for the target account.
type Credentials struct {
	Username string
	Password string
}

// Attempt records one try within a logical login request. Kept in memory for
// the lifetime of the request only; external telemetry consumes it from there.
type Attempt struct {
	SessionID  string    `json:"session_id"`
	Resource   string    `json:"resource,omitempty"` // redacted key, empty = direct path
	Outcome    Outcome   `json:"outcome"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}
