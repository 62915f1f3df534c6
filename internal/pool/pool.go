// Package pool implements the rotating resource pool: fair allocation of a
// scarce set of egress identities under concurrency, with failure-aware
// cooldown backoff, idle decay, and durable stats.
package pool

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/nmhoang23/rotauth/internal/core/domain"
	"github.com/nmhoang23/rotauth/internal/infra/store"
	"github.com/nmhoang23/rotauth/internal/metrics"
)

// Config holds pool tuning. All values have working defaults via Normalize.
type Config struct {
	// DefaultCooldown is the floor cooldown applied to fresh and recovered
	// resources.
	DefaultCooldown time.Duration

	// MaxCooldown caps backoff growth.
	MaxCooldown time.Duration

	// BackoffFactor is the geometric growth factor applied per soft failure.
	BackoffFactor float64

	// DecayInterval is both the decay ticker period and the idle threshold
	// past which penalties relax.
	DecayInterval time.Duration

	// BlockOnEmpty makes Acquire wait for the next cooldown expiry instead of
	// returning none when every resource is cooling down.
	BlockOnEmpty bool

	// MaxWait bounds the blocking wait. Zero means wait until ctx is done.
	MaxWait time.Duration
}

// Normalize fills zero fields with defaults.
func (c Config) Normalize() Config {
	if c.DefaultCooldown <= 0 {
		c.DefaultCooldown = time.Second
	}
	if c.MaxCooldown <= 0 {
		c.MaxCooldown = 5 * time.Minute
	}
	if c.BackoffFactor <= 1 {
		c.BackoffFactor = 2.0
	}
	if c.DecayInterval <= 0 {
		c.DecayInterval = 10 * time.Minute
	}
	return c
}

// Pool owns the resource set and its rotation stats. All mutations are
// serialized by one pool-wide mutex so two concurrent Acquire calls can never
// reserve the same resource inside its cooldown window.
type Pool struct {
	mu        sync.Mutex
	cfg       Config
	resources []domain.Resource
	stats     map[string]*domain.ResourceStats
	st        store.Store
	now       func() time.Time
	rng       *rand.Rand
	log       *slog.Logger
}

// New creates a pool with injected persistence and clock. A nil store
// disables persistence; a nil clock uses time.Now.
func New(cfg Config, st store.Store, clock func() time.Time, log *slog.Logger) *Pool {
	if st == nil {
		st = store.Noop{}
	}
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pool{
		cfg:   cfg.Normalize(),
		stats: make(map[string]*domain.ResourceStats),
		st:    st,
		now:   clock,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   log,
	}
}

// Init loads the resource list from the source file and merges persisted
// stats. Both reads fail soft: a missing or unreadable source yields an empty
// pool, a failing store yields default stats. Neither is fatal.
func (p *Pool) Init(ctx context.Context, sourcePath string) {
	resources, err := LoadSource(sourcePath)
	if err != nil {
		p.log.Warn("Failed to load resource source, pool starts empty",
			"path", sourcePath, "error", err)
	}

	persisted, err := p.st.Load(ctx)
	if err != nil {
		p.log.Warn("Failed to load persisted stats, starting fresh", "error", err)
		persisted = map[string]domain.ResourceStats{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.resources = resources
	for key, rs := range persisted {
		s := rs
		// Upgrade stats persisted under an older, smaller default.
		if s.CooldownMs < p.cfg.DefaultCooldown.Milliseconds() {
			s.CooldownMs = p.cfg.DefaultCooldown.Milliseconds()
		}
		p.stats[key] = &s
	}

	metrics.PoolSize.Set(float64(len(p.resources)))
	p.updateAvailableLocked()

	p.log.Info("Resource pool initialized",
		"resources", len(p.resources), "persisted_stats", len(persisted))
}

// Resources returns a copy of the loaded resource list.
func (p *Pool) Resources() []domain.Resource {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Resource, len(p.resources))
	copy(out, p.resources)
	return out
}

// Acquire selects an available resource and reserves it atomically: by the
// time it returns, LastUsedAt is already set so no concurrent caller can see
// the same resource as available.
//
// Selection is weighted random, weight inversely proportional to the current
// cooldown, so penalized resources are chosen less often even once eligible.
//
// Returns (nil, nil) when no resource is available and blocking is disabled
// or the bounded wait expires.
func (p *Pool) Acquire(ctx context.Context) (*domain.Resource, error) {
	return p.acquire(ctx, "")
}

// AcquireExcluding behaves like Acquire but avoids the given resource key
// when any other resource is available. Used to step off a just-penalized
// identity between retries.
func (p *Pool) AcquireExcluding(ctx context.Context, excludeKey string) (*domain.Resource, error) {
	return p.acquire(ctx, excludeKey)
}

func (p *Pool) acquire(ctx context.Context, excludeKey string) (*domain.Resource, error) {
	var deadline time.Time
	if p.cfg.BlockOnEmpty && p.cfg.MaxWait > 0 {
		deadline = p.now().Add(p.cfg.MaxWait)
	}

	for {
		p.mu.Lock()
		res, wait := p.selectLocked(excludeKey)
		if res != nil {
			p.reserveLocked(res)
			p.persistLocked()
			p.mu.Unlock()
			metrics.AcquireTotal.WithLabelValues("hit").Inc()
			return res, nil
		}
		empty := len(p.resources) == 0
		p.mu.Unlock()

		if !p.cfg.BlockOnEmpty || empty {
			metrics.AcquireTotal.WithLabelValues("miss").Inc()
			return nil, nil
		}

		if wait <= 0 {
			wait = 10 * time.Millisecond
		}
		if !deadline.IsZero() {
			remaining := deadline.Sub(p.now())
			if remaining <= 0 {
				metrics.AcquireTotal.WithLabelValues("wait_timeout").Inc()
				return nil, nil
			}
			if wait > remaining {
				wait = remaining
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Reserve records usage of a caller-preferred resource so its cooldown window
// starts like any acquired one.
func (p *Pool) Reserve(res *domain.Resource) {
	if res == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reserveLocked(res)
	p.persistLocked()
}

// ReportOutcome applies the post-attempt classification. Success resets the
// cooldown to the default and leaves the resource immediately re-eligible;
// a soft failure grows the cooldown geometrically up to the cap.
func (p *Pool) ReportOutcome(res *domain.Resource, class domain.Classification) {
	if res == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.statLocked(res.Key())
	now := p.now()

	switch class {
	case domain.ClassSuccess:
		s.CooldownMs = p.cfg.DefaultCooldown.Milliseconds()
		// LastUsedAt moves to now - cooldown so the resource is available
		// again immediately after a success.
		s.LastUsedAt = now.Add(-p.cfg.DefaultCooldown)
		s.SuccessCount++
	case domain.ClassSoftFailure:
		next := int64(float64(s.CooldownMs) * p.cfg.BackoffFactor)
		if maxMs := p.cfg.MaxCooldown.Milliseconds(); next > maxMs {
			next = maxMs
		}
		s.CooldownMs = next
		s.LastUsedAt = now
		s.FailCount++
	}

	p.log.Debug("Resource outcome reported",
		"resource", res.Redacted(), "class", class.String(),
		"cooldown_ms", s.CooldownMs)

	p.updateAvailableLocked()
	p.persistLocked()
}

// statLocked lazily creates default stats on first reference.
func (p *Pool) statLocked(key string) *domain.ResourceStats {
	s, ok := p.stats[key]
	if !ok {
		s = &domain.ResourceStats{CooldownMs: p.cfg.DefaultCooldown.Milliseconds()}
		p.stats[key] = s
	}
	return s
}

func (p *Pool) reserveLocked(res *domain.Resource) {
	s := p.statLocked(res.Key())
	s.LastUsedAt = p.now()
	s.UseCount++
	p.updateAvailableLocked()
}

// selectLocked picks an available resource, or returns the wait until the
// earliest one frees up. The excluded key is only avoided when an alternative
// exists.
func (p *Pool) selectLocked(excludeKey string) (*domain.Resource, time.Duration) {
	now := p.now()

	var candidates []int
	var weights []float64
	var totalWeight float64
	minWait := time.Duration(-1)

	for i := range p.resources {
		key := p.resources[i].Key()
		s := p.statLocked(key)
		if !s.Available(now) {
			if w := s.AvailableAt().Sub(now); minWait < 0 || w < minWait {
				minWait = w
			}
			continue
		}
		if key == excludeKey {
			continue
		}
		w := float64(p.cfg.DefaultCooldown.Milliseconds()) / float64(s.CooldownMs)
		candidates = append(candidates, i)
		weights = append(weights, w)
		totalWeight += w
	}

	// Fall back to the excluded resource when it is the only one available.
	if len(candidates) == 0 && excludeKey != "" {
		for i := range p.resources {
			if p.resources[i].Key() != excludeKey {
				continue
			}
			if p.statLocked(excludeKey).Available(now) {
				res := p.resources[i]
				return &res, 0
			}
		}
	}

	if len(candidates) == 0 {
		return nil, minWait
	}

	r := p.rng.Float64() * totalWeight
	for j, i := range candidates {
		r -= weights[j]
		if r <= 0 {
			res := p.resources[i]
			return &res, 0
		}
	}
	res := p.resources[candidates[len(candidates)-1]]
	return &res, 0
}

func (p *Pool) updateAvailableLocked() {
	now := p.now()
	available := 0
	for i := range p.resources {
		if p.statLocked(p.resources[i].Key()).Available(now) {
			available++
		}
	}
	metrics.PoolAvailable.Set(float64(available))
}

// persistLocked snapshots the stats map to the store. Failures degrade to
// in-memory-only operation and are logged, never surfaced to callers.
func (p *Pool) persistLocked() {
	snapshot := make(map[string]domain.ResourceStats, len(p.stats))
	for key, s := range p.stats {
		snapshot[key] = *s
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.st.Save(ctx, snapshot); err != nil {
		metrics.StoreErrors.Inc()
		p.log.Warn("Failed to persist resource stats, continuing in memory", "error", err)
	}
}

// Close flushes nothing (every mutation already persisted) and closes the store.
func (p *Pool) Close() error {
	return p.st.Close()
}
