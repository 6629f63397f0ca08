package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"launchlens/internal/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshot.json")

	s := New(50, 20, []time.Duration{time.Hour})
	s.AdvanceWatermark(777)
	s.ApplyLaunch(makeLaunch("0xaa"))
	s.ApplySwaps("0xaa", []model.Swap{
		makeSwap("0xt1", 0, 100, uint64(time.Now().Unix()), "1000000000000000000", sqrtX96One),
	})

	p := NewPersister(path, s, time.Minute, nil, zap.NewNop(), nil)
	if err := p.Save(s.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, ok := LoadSnapshot(path, zap.NewNop())
	if !ok {
		t.Fatalf("snapshot not loadable")
	}
	if snap.LastProcessedBlock != 777 {
		t.Fatalf("watermark mismatch: %d", snap.LastProcessedBlock)
	}
	if len(snap.Launches) != 1 || len(snap.Histories["0xaa"]) != 1 {
		t.Fatalf("state mismatch: %+v", snap)
	}
	if snap.SavedAt == "" {
		t.Fatalf("saved_at missing")
	}
}

func TestLoadSnapshotAbsent(t *testing.T) {
	if _, ok := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop()); ok {
		t.Fatalf("absent snapshot must not load")
	}
}

func TestLoadSnapshotCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, ok := LoadSnapshot(path, zap.NewNop()); ok {
		t.Fatalf("corrupt snapshot must not load")
	}
}

func TestLoadSnapshotVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(`{"version":99}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, ok := LoadSnapshot(path, zap.NewNop()); ok {
		t.Fatalf("unknown snapshot version must not load")
	}
}
