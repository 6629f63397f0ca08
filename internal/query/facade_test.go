package query

import (
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"launchlens/internal/model"
	"launchlens/internal/store"
)

func newFacadeAt(t *testing.T, now time.Time) (*Facade, *store.Store) {
	t.Helper()
	s := store.New(50, 20, []time.Duration{time.Hour})
	f := New(s)
	f.now = func() time.Time { return now }
	return f, s
}

func launchAt(poolID string, discovered time.Time) model.Launch {
	return model.Launch{
		PoolKey: model.PoolKey{
			PoolID:    poolID,
			Currency0: "0x6666666666666666666666666666666666666666",
			Currency1: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		},
		TokenAddress:  "0x6666666666666666666666666666666666666666",
		PairedAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		Symbol:        "MOON",
		DiscoveredAt:  discovered,
	}
}

func TestRecentLaunchesWindowAndOrder(t *testing.T) {
	now := time.Unix(1_000_000, 0).UTC()
	f, s := newFacadeAt(t, now)

	s.ApplyLaunch(launchAt("0x01", now.Add(-2*time.Hour)))
	s.ApplyLaunch(launchAt("0x02", now.Add(-30*time.Minute)))
	s.ApplyLaunch(launchAt("0x03", now.Add(-time.Minute)))

	got := f.RecentLaunches(time.Hour, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 launches inside window, got %d", len(got))
	}
	if got[0].PoolKey.PoolID != "0x03" || got[1].PoolKey.PoolID != "0x02" {
		t.Fatalf("most recent first expected: %s, %s", got[0].PoolKey.PoolID, got[1].PoolKey.PoolID)
	}
	if got[0].Stats == nil {
		t.Fatalf("summary must join aggregates")
	}
}

func TestRecentLaunchesLimit(t *testing.T) {
	now := time.Unix(1_000_000, 0).UTC()
	f, s := newFacadeAt(t, now)

	for i := 0; i < 5; i++ {
		s.ApplyLaunch(launchAt(fmt.Sprintf("0x%02d", i), now.Add(-time.Minute)))
	}

	got := f.RecentLaunches(time.Hour, 2)
	if len(got) != 2 {
		t.Fatalf("limit not honored, got %d", len(got))
	}
	if got[0].PoolKey.PoolID != "0x04" {
		t.Fatalf("newest launch must come first, got %s", got[0].PoolKey.PoolID)
	}
}

func TestPoolSummaryNotFound(t *testing.T) {
	f, _ := newFacadeAt(t, time.Now().UTC())

	if _, err := f.PoolSummary("0xdeadbeef"); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func TestPoolSummaryTracked(t *testing.T) {
	now := time.Unix(1_000_000, 0).UTC()
	f, s := newFacadeAt(t, now)
	s.ApplyLaunch(launchAt("0xaa", now))

	stats, err := f.PoolSummary("0xAA")
	if err != nil {
		t.Fatalf("pool summary: %v", err)
	}
	if stats.PoolID != "0xaa" {
		t.Fatalf("pool id mismatch: %s", stats.PoolID)
	}
}

func TestMeetsBalanceGate(t *testing.T) {
	f, _ := newFacadeAt(t, time.Now().UTC())

	minimum := big.NewInt(1000)
	if !f.MeetsBalanceGate(big.NewInt(1000), minimum) {
		t.Fatalf("exact balance must pass")
	}
	if f.MeetsBalanceGate(big.NewInt(999), minimum) {
		t.Fatalf("short balance must fail")
	}
	if f.MeetsBalanceGate(nil, minimum) {
		t.Fatalf("unknown balance must fail")
	}
}
