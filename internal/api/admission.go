package api

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrGateFull is returned when no admission slot frees up in time.
var ErrGateFull = errors.New("too many concurrent login sessions")

// Gate bounds how many login sessions run at once. It replaces the busy-flag
// counters older iterations of this service used with an explicit semaphore.
type Gate struct {
	sem     chan struct{}
	maxWait time.Duration

	mu       sync.Mutex
	rejected int64
}

// NewGate creates a gate admitting up to maxConcurrent sessions. maxWait of
// zero rejects immediately when full.
func NewGate(maxConcurrent int, maxWait time.Duration) *Gate {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Gate{
		sem:     make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire claims a slot or fails with ErrGateFull.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.sem <- struct{}{}:
		return nil
	default:
	}

	if g.maxWait <= 0 {
		g.reject()
		return ErrGateFull
	}

	timer := time.NewTimer(g.maxWait)
	defer timer.Stop()

	select {
	case g.sem <- struct{}{}:
		return nil
	case <-timer.C:
		g.reject()
		return ErrGateFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot claimed by Acquire.
func (g *Gate) Release() {
	select {
	case <-g.sem:
	default:
	}
}

// Rejected returns how many admissions were turned away.
func (g *Gate) Rejected() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rejected
}

func (g *Gate) reject() {
	g.mu.Lock()
	g.rejected++
	g.mu.Unlock()
}
