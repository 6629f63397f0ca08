package query

import (
	"errors"
	"math/big"
	"time"

	"launchlens/internal/model"
	"launchlens/internal/store"
)

// ErrPoolNotFound is returned when the queried pool is not tracked.
var ErrPoolNotFound = errors.New("pool not found")

// LaunchSummary joins a launch with its current rolling aggregates.
// Stats is nil when the pool's history has been evicted.
type LaunchSummary struct {
	model.Launch
	Stats *model.PoolStats `json:"stats,omitempty"`
}

// Facade is the read-only surface external callers use. It answers from
// current in-memory state and never touches chain I/O.
type Facade struct {
	store *store.Store
	now   func() time.Time
}

func New(stateStore *store.Store) *Facade {
	return &Facade{store: stateStore, now: func() time.Time { return time.Now().UTC() }}
}

// RecentLaunches returns launches discovered within window, capped at
// limit, most recent first, each joined with its current aggregates.
func (f *Facade) RecentLaunches(window time.Duration, limit int) []LaunchSummary {
	now := f.now()
	cutoff := now.Add(-window)

	launches := f.store.Launches()
	out := make([]LaunchSummary, 0, limit)

	for i := len(launches) - 1; i >= 0 && len(out) < limit; i-- {
		launch := launches[i]
		if launch.DiscoveredAt.Before(cutoff) {
			continue
		}

		summary := LaunchSummary{Launch: launch}
		if stats, ok := f.store.PoolStats(launch.PoolKey.PoolID, now); ok {
			summary.Stats = &stats
		}
		out = append(out, summary)
	}
	return out
}

// PoolSummary returns current aggregates for one pool.
func (f *Facade) PoolSummary(poolID string) (model.PoolStats, error) {
	stats, ok := f.store.PoolStats(poolID, f.now())
	if !ok {
		return model.PoolStats{}, ErrPoolNotFound
	}
	return stats, nil
}

// MeetsBalanceGate reports whether a wallet balance clears the minimum
// required for trade execution. The balance itself comes from the
// balance-check collaborator; this is only the gating rule.
func (f *Facade) MeetsBalanceGate(balance, minimum *big.Int) bool {
	if balance == nil || minimum == nil {
		return false
	}
	return balance.Cmp(minimum) >= 0
}
