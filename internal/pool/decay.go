package pool

import (
	"context"
	"time"
)

// StartDecay runs the periodic penalty relaxation loop until ctx is done.
// The ticker runs at the configured decay interval, independent of traffic.
func (p *Pool) StartDecay(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.DecayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Decay()
		}
	}
}

// Decay relaxes penalties for every resource left idle longer than the decay
// interval: the fail count steps toward zero and the cooldown divides by the
// backoff factor, never dropping below the default. Recently used resources
// are untouched.
func (p *Pool) Decay() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	changed := false
	relaxedCount := 0

	for _, s := range p.stats {
		if now.Sub(s.LastUsedAt) <= p.cfg.DecayInterval {
			continue
		}

		if s.FailCount > 0 {
			s.FailCount--
			changed = true
		}

		if defaultMs := p.cfg.DefaultCooldown.Milliseconds(); s.CooldownMs > defaultMs {
			relaxed := int64(float64(s.CooldownMs) / p.cfg.BackoffFactor)
			if relaxed < defaultMs {
				relaxed = defaultMs
			}
			s.CooldownMs = relaxed
			changed = true
			relaxedCount++
		}
	}

	if changed {
		p.log.Debug("Resource penalties decayed", "relaxed", relaxedCount)
		p.updateAvailableLocked()
		p.persistLocked()
	}
}
