package pool

import "time"

// View is a read-only picture of one resource's rotation state with the
// identity redacted for external consumption.
type View struct {
	Resource     string    `json:"resource"`
	Available    bool      `json:"available"`
	CooldownMs   int64     `json:"cooldown_ms"`
	SuccessCount int64     `json:"success_count"`
	FailCount    int64     `json:"fail_count"`
	UseCount     int64     `json:"use_count"`
	LastUsedAt   time.Time `json:"last_used_at,omitempty"`
}

// Snapshot returns the current state of every loaded resource.
func (p *Pool) Snapshot() []View {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	views := make([]View, 0, len(p.resources))
	for i := range p.resources {
		res := p.resources[i]
		s := p.statLocked(res.Key())
		views = append(views, View{
			Resource:     res.Redacted(),
			Available:    s.Available(now),
			CooldownMs:   s.CooldownMs,
			SuccessCount: s.SuccessCount,
			FailCount:    s.FailCount,
			UseCount:     s.UseCount,
			LastUsedAt:   s.LastUsedAt,
		})
	}
	return views
}
