package domain

import "time"

// ResourceStats tracks the mutable rotation state for one resource.
// A resource is available iff now >= LastUsedAt + Cooldown.
type ResourceStats struct {
	CooldownMs   int64     `json:"cooldown_ms"   db:"cooldown_ms"`
	SuccessCount int64     `json:"success_count" db:"success_count"`
	FailCount    int64     `json:"fail_count"    db:"fail_count"`
	UseCount     int64     `json:"use_count"     db:"use_count"`
	LastUsedAt   time.Time `json:"last_used_at"  db:"last_used_at"`
}

// Cooldown returns the current cooldown as a duration.
func (s ResourceStats) Cooldown() time.Duration {
	return time.Duration(s.CooldownMs) * time.Millisecond
}

// AvailableAt returns the earliest instant the resource may be reselected.
func (s ResourceStats) AvailableAt() time.Time {
	return s.LastUsedAt.Add(s.Cooldown())
}

// Available reports whether the resource is selectable at the given instant.
func (s ResourceStats) Available(now time.Time) bool {
	return !now.Before(s.AvailableAt())
}
