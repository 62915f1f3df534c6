// Package store persists the resource pool's rotation stats.
//
// Backends share one contract: Load returns the full resource→stats mapping
// at startup, and Save overwrites the whole mapping after a mutation. The
// pool treats every store error as non-fatal and keeps running in memory.
package store

import (
	"context"

	"github.com/nmhoang23/rotauth/internal/core/domain"
)

// Store is the durable keyed record store for resource stats.
type Store interface {
	Load(ctx context.Context) (map[string]domain.ResourceStats, error)
	Save(ctx context.Context, stats map[string]domain.ResourceStats) error
	Close() error
}

// Noop discards all writes. Used when persistence is disabled and by tests.
type Noop struct{}

func (Noop) Load(context.Context) (map[string]domain.ResourceStats, error) {
	return map[string]domain.ResourceStats{}, nil
}

func (Noop) Save(context.Context, map[string]domain.ResourceStats) error { return nil }

func (Noop) Close() error { return nil }
