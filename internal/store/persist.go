package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"launchlens/internal/model"
	"launchlens/internal/observability"
)

// Mirror receives a copy of durable state alongside the file snapshot.
// Mirror failures are logged and never block ingestion.
type Mirror interface {
	MirrorSnapshot(ctx context.Context, snap model.Snapshot, stats []model.PoolStats) error
}

// Persister writes periodic snapshots to disk, and on shutdown writes a
// final one. It only ever reads a consistent snapshot from the store and
// never blocks the ingestion path.
type Persister struct {
	path     string
	store    *Store
	interval time.Duration
	mirror   Mirror
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewPersister(path string, store *Store, interval time.Duration, mirror Mirror, logger *zap.Logger, metrics *observability.Metrics) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Persister{
		path:     path,
		store:    store,
		interval: interval,
		mirror:   mirror,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run persists on every interval tick until the context is cancelled,
// then performs one final save. Persistence failures are retried on the
// next tick; they never crash the service.
func (p *Persister) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.persist(context.Background())
			return
		case <-ticker.C:
			p.persist(ctx)
		}
	}
}

func (p *Persister) persist(ctx context.Context) {
	snap := p.store.Snapshot()

	if err := p.Save(snap); err != nil {
		p.logger.Warn("snapshot save failed", zap.Error(err), zap.String("path", p.path))
		p.metrics.IncError("persist")
	}

	if p.mirror != nil {
		stats := make([]model.PoolStats, 0, len(snap.Launches))
		now := time.Now().UTC()
		for _, launch := range snap.Launches {
			if poolStats, ok := p.store.PoolStats(launch.PoolKey.PoolID, now); ok {
				stats = append(stats, poolStats)
			}
		}
		if err := p.mirror.MirrorSnapshot(ctx, snap, stats); err != nil {
			p.logger.Warn("snapshot mirror failed", zap.Error(err))
			p.metrics.IncError("persist")
		}
	}
}

// Save writes the snapshot atomically via a temp file and rename.
func (p *Persister) Save(snap model.Snapshot) error {
	dir := filepath.Dir(p.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmpPath := p.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads the last durable snapshot. An absent or corrupt
// file is non-fatal: the tracker starts empty and resumes from the
// chain's current head.
func LoadSnapshot(path string, logger *zap.Logger) (model.Snapshot, bool) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("snapshot unreadable, starting from empty state", zap.Error(err), zap.String("path", path))
		}
		return model.Snapshot{}, false
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Error("snapshot corrupt, starting from empty state", zap.Error(err), zap.String("path", path))
		return model.Snapshot{}, false
	}
	if snap.Version != model.SnapshotVersion {
		logger.Error("snapshot version mismatch, starting from empty state",
			zap.Int("found", snap.Version), zap.Int("want", model.SnapshotVersion))
		return model.Snapshot{}, false
	}

	return snap, true
}
