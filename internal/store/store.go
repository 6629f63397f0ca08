package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"launchlens/internal/model"
)

// Store is the single authoritative in-memory state of the tracker.
// Mutations come from exactly one execution context, the poller's
// ingestion pipeline; reads may come from many callers concurrently.
type Store struct {
	mu sync.RWMutex

	maxLaunches int
	maxSwaps    int
	windows     []time.Duration

	lastProcessedBlock uint64
	launches           []model.Launch
	histories          map[string]*PoolHistory
}

func New(maxLaunches, maxSwaps int, windows []time.Duration) *Store {
	if maxLaunches <= 0 {
		maxLaunches = 50
	}
	if maxSwaps <= 0 {
		maxSwaps = 20
	}
	return &Store{
		maxLaunches: maxLaunches,
		maxSwaps:    maxSwaps,
		windows:     windows,
		launches:    make([]model.Launch, 0, maxLaunches),
		histories:   make(map[string]*PoolHistory),
	}
}

// LastProcessedBlock returns the watermark.
func (s *Store) LastProcessedBlock() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastProcessedBlock
}

// AdvanceWatermark moves the watermark forward. Regressions are ignored
// so re-applied ranges can never rewind it.
func (s *Store) AdvanceWatermark(block uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if block > s.lastProcessedBlock {
		s.lastProcessedBlock = block
	}
}

// HasPool reports whether the pool is tracked.
func (s *Store) HasPool(poolID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.histories[normalizeID(poolID)]
	return ok
}

// ApplyLaunch commits a launch and opens its swap history. Duplicate
// pool ids are ignored. When the launch cap is exceeded the oldest
// launch is evicted together with its history.
func (s *Store) ApplyLaunch(launch model.Launch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := normalizeID(launch.PoolKey.PoolID)
	if _, ok := s.histories[id]; ok {
		return
	}

	quoteIsCurrency0 := strings.EqualFold(launch.PairedAddress, launch.PoolKey.Currency0)
	s.histories[id] = newPoolHistory(s.maxSwaps, quoteIsCurrency0)
	s.launches = append(s.launches, launch)

	for len(s.launches) > s.maxLaunches {
		evicted := s.launches[0]
		s.launches = s.launches[1:]
		delete(s.histories, normalizeID(evicted.PoolKey.PoolID))
	}
}

// ApplySwaps appends swaps to a tracked pool's history in
// (blockNumber, logIndex) order. Swaps for unknown pools are dropped.
func (s *Store) ApplySwaps(poolID string, swaps []model.Swap) {
	if len(swaps) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.histories[normalizeID(poolID)]
	if !ok {
		return
	}

	ordered := make([]model.Swap, len(swaps))
	copy(ordered, swaps)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].BlockNumber != ordered[j].BlockNumber {
			return ordered[i].BlockNumber < ordered[j].BlockNumber
		}
		return ordered[i].LogIndex < ordered[j].LogIndex
	})

	for _, swap := range ordered {
		history.append(swap)
	}
}

// Launches returns the tracked launches in discovery order.
func (s *Store) Launches() []model.Launch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Launch, len(s.launches))
	copy(out, s.launches)
	return out
}

// PoolStats recomputes the rolling aggregates for one pool.
func (s *Store) PoolStats(poolID string, now time.Time) (model.PoolStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := normalizeID(poolID)
	history, ok := s.histories[id]
	if !ok {
		return model.PoolStats{}, false
	}
	return history.stats(id, s.windows, now), true
}

// TrackedPools returns the number of pools with open histories.
func (s *Store) TrackedPools() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.histories)
}

// Snapshot produces the serializable state document. Aggregates are
// derived and excluded; they are rebuilt from the histories on restore.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	launches := make([]model.Launch, len(s.launches))
	copy(launches, s.launches)

	histories := make(map[string][]model.Swap, len(s.histories))
	for id, history := range s.histories {
		histories[id] = history.snapshot()
	}

	return model.Snapshot{
		Version:            model.SnapshotVersion,
		LastProcessedBlock: s.lastProcessedBlock,
		Launches:           launches,
		Histories:          histories,
		SavedAt:            time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// Restore replaces the state with the snapshot contents. Histories
// without a matching launch are dropped; launches beyond the cap are
// evicted oldest first.
func (s *Store) Restore(snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastProcessedBlock = snap.LastProcessedBlock
	s.launches = s.launches[:0]
	s.histories = make(map[string]*PoolHistory)

	launches := snap.Launches
	if len(launches) > s.maxLaunches {
		launches = launches[len(launches)-s.maxLaunches:]
	}

	for _, launch := range launches {
		id := normalizeID(launch.PoolKey.PoolID)
		if _, ok := s.histories[id]; ok {
			continue
		}
		quoteIsCurrency0 := strings.EqualFold(launch.PairedAddress, launch.PoolKey.Currency0)
		history := newPoolHistory(s.maxSwaps, quoteIsCurrency0)
		for _, swap := range snap.Histories[id] {
			history.append(swap)
		}
		s.histories[id] = history
		s.launches = append(s.launches, launch)
	}
}

func normalizeID(poolID string) string {
	return strings.ToLower(poolID)
}
