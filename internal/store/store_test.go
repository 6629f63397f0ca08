package store

import (
	"fmt"
	"testing"
	"time"

	"launchlens/internal/model"
)

const (
	pairedCurrency = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	sqrtX96One     = "79228162514264337593543950336"  // price 1.0
	sqrtX96Two     = "158456325028528675187087900672" // price 4.0
)

func makeLaunch(poolID string) model.Launch {
	return model.Launch{
		PoolKey: model.PoolKey{
			PoolID:    poolID,
			Currency0: "0x6666666666666666666666666666666666666666",
			Currency1: pairedCurrency,
		},
		TokenAddress:  "0x6666666666666666666666666666666666666666",
		PairedAddress: pairedCurrency,
		Name:          "Moon Token",
		Symbol:        "MOON",
		DiscoveredAt:  time.Now().UTC(),
	}
}

func makeSwap(txHash string, logIndex, block, ts uint64, amount1, sqrt string) model.Swap {
	return model.Swap{
		PoolID:       "0xaa",
		TxHash:       txHash,
		BlockNumber:  block,
		LogIndex:     logIndex,
		Sender:       "0x8888888888888888888888888888888888888888",
		Amount0:      "-1000",
		Amount1:      amount1,
		SqrtPriceX96: sqrt,
		Timestamp:    ts,
	}
}

func TestApplyLaunchIdempotent(t *testing.T) {
	s := New(50, 20, nil)

	s.ApplyLaunch(makeLaunch("0xAA"))
	s.ApplyLaunch(makeLaunch("0xaa"))

	if got := len(s.Launches()); got != 1 {
		t.Fatalf("duplicate pool id must be ignored, got %d launches", got)
	}
	if !s.HasPool("0xAA") || !s.HasPool("0xaa") {
		t.Fatalf("pool lookup must be case insensitive")
	}
}

func TestLaunchCapEviction(t *testing.T) {
	s := New(3, 20, nil)

	for i := 0; i < 4; i++ {
		s.ApplyLaunch(makeLaunch(fmt.Sprintf("0x%02d", i)))
	}

	launches := s.Launches()
	if len(launches) != 3 {
		t.Fatalf("expected 3 launches after eviction, got %d", len(launches))
	}
	if launches[0].PoolKey.PoolID != "0x01" {
		t.Fatalf("oldest launch must be evicted first, got %s", launches[0].PoolKey.PoolID)
	}
	if s.HasPool("0x00") {
		t.Fatalf("evicted launch must drop its history")
	}
	if s.TrackedPools() != 3 {
		t.Fatalf("expected 3 histories, got %d", s.TrackedPools())
	}
}

func TestSwapRingCap(t *testing.T) {
	s := New(50, 5, []time.Duration{time.Hour})
	s.ApplyLaunch(makeLaunch("0xaa"))

	now := time.Unix(1_000_000, 0).UTC()
	swaps := make([]model.Swap, 0, 7)
	for i := 0; i < 7; i++ {
		swaps = append(swaps, makeSwap(fmt.Sprintf("0xt%d", i), 0, uint64(100+i), uint64(now.Unix()), "1000000000000000000", sqrtX96One))
	}
	s.ApplySwaps("0xaa", swaps)

	stats, ok := s.PoolStats("0xaa", now)
	if !ok {
		t.Fatalf("pool stats missing")
	}
	if stats.SwapCount != 5 {
		t.Fatalf("ring must cap at 5 swaps, got %d", stats.SwapCount)
	}

	snap := s.Snapshot()
	history := snap.Histories["0xaa"]
	if len(history) != 5 {
		t.Fatalf("snapshot history length %d", len(history))
	}
	if history[0].TxHash != "0xt2" {
		t.Fatalf("oldest swaps must be evicted, head is %s", history[0].TxHash)
	}
}

func TestApplySwapsOrderingAndDedupe(t *testing.T) {
	s := New(50, 20, nil)
	s.ApplyLaunch(makeLaunch("0xaa"))

	ts := uint64(time.Now().Unix())
	s.ApplySwaps("0xaa", []model.Swap{
		makeSwap("0xt2", 5, 102, ts, "1", sqrtX96One),
		makeSwap("0xt1", 3, 101, ts, "1", sqrtX96One),
		makeSwap("0xt1", 1, 101, ts, "1", sqrtX96One),
	})
	// re-applied range after a partial failure
	s.ApplySwaps("0xaa", []model.Swap{
		makeSwap("0xt1", 3, 101, ts, "1", sqrtX96One),
	})

	history := s.Snapshot().Histories["0xaa"]
	if len(history) != 3 {
		t.Fatalf("expected 3 swaps after dedupe, got %d", len(history))
	}
	if history[0].LogIndex != 1 || history[1].LogIndex != 3 || history[2].LogIndex != 5 {
		t.Fatalf("swaps out of order: %+v", history)
	}
}

func TestApplySwapsUnknownPoolDropped(t *testing.T) {
	s := New(50, 20, nil)

	s.ApplySwaps("0xbb", []model.Swap{
		makeSwap("0xt1", 0, 100, uint64(time.Now().Unix()), "1", sqrtX96One),
	})

	if s.TrackedPools() != 0 {
		t.Fatalf("swap for unknown pool must not open a history")
	}
}

func TestPoolStatsWindows(t *testing.T) {
	windows := []time.Duration{5 * time.Minute, time.Hour}
	s := New(50, 20, windows)
	s.ApplyLaunch(makeLaunch("0xaa"))

	now := time.Unix(1_000_000, 0).UTC()
	old := uint64(now.Add(-30 * time.Minute).Unix())
	recent := uint64(now.Add(-time.Minute).Unix())

	oldSwap := makeSwap("0xt1", 0, 100, old, "3000000000000000000", sqrtX96One)
	recentSwap := makeSwap("0xt2", 0, 101, recent, "2000000000000000000", sqrtX96Two)
	recentSwap.Sender = "0x9999999999999999999999999999999999999999"

	s.ApplySwaps("0xaa", []model.Swap{oldSwap, recentSwap})

	stats, ok := s.PoolStats("0xaa", now)
	if !ok {
		t.Fatalf("pool stats missing")
	}
	if len(stats.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(stats.Windows))
	}

	fiveMin := stats.Windows[0]
	if fiveMin.Window != "5m" {
		t.Fatalf("window label %q", fiveMin.Window)
	}
	if fiveMin.SwapCount != 1 || fiveMin.DistinctMakers != 1 {
		t.Fatalf("5m counts mismatch: %+v", fiveMin)
	}
	if fiveMin.Volume < 1.999 || fiveMin.Volume > 2.001 {
		t.Fatalf("5m volume %f", fiveMin.Volume)
	}
	if fiveMin.PriceChangePct != 0 {
		t.Fatalf("single swap window must report zero change, got %f", fiveMin.PriceChangePct)
	}

	hour := stats.Windows[1]
	if hour.Window != "1h" {
		t.Fatalf("window label %q", hour.Window)
	}
	if hour.SwapCount != 2 || hour.DistinctMakers != 2 {
		t.Fatalf("1h counts mismatch: %+v", hour)
	}
	if hour.Volume < 4.999 || hour.Volume > 5.001 {
		t.Fatalf("1h volume %f", hour.Volume)
	}
	// price moved from 1.0 to 4.0
	if hour.PriceChangePct < 299.99 || hour.PriceChangePct > 300.01 {
		t.Fatalf("1h price change %f", hour.PriceChangePct)
	}

	if stats.LastPrice < 3.999 || stats.LastPrice > 4.001 {
		t.Fatalf("last price %f", stats.LastPrice)
	}
}

func TestWatermarkMonotonic(t *testing.T) {
	s := New(50, 20, nil)

	s.AdvanceWatermark(100)
	s.AdvanceWatermark(90)

	if got := s.LastProcessedBlock(); got != 100 {
		t.Fatalf("watermark must never rewind, got %d", got)
	}

	s.AdvanceWatermark(101)
	if got := s.LastProcessedBlock(); got != 101 {
		t.Fatalf("watermark must advance, got %d", got)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	windows := []time.Duration{time.Hour}
	s := New(50, 20, windows)
	s.AdvanceWatermark(12345)
	s.ApplyLaunch(makeLaunch("0xaa"))

	now := time.Unix(1_000_000, 0).UTC()
	s.ApplySwaps("0xaa", []model.Swap{
		makeSwap("0xt1", 0, 100, uint64(now.Unix()), "2000000000000000000", sqrtX96Two),
	})

	snap := s.Snapshot()
	if snap.Version != model.SnapshotVersion {
		t.Fatalf("snapshot version %d", snap.Version)
	}

	restored := New(50, 20, windows)
	restored.Restore(snap)

	if restored.LastProcessedBlock() != 12345 {
		t.Fatalf("watermark not restored: %d", restored.LastProcessedBlock())
	}
	if len(restored.Launches()) != 1 {
		t.Fatalf("launches not restored")
	}

	before, _ := s.PoolStats("0xaa", now)
	after, ok := restored.PoolStats("0xaa", now)
	if !ok {
		t.Fatalf("history not restored")
	}
	if before.SwapCount != after.SwapCount || before.LastPrice != after.LastPrice {
		t.Fatalf("aggregates diverge after restore: %+v != %+v", before, after)
	}
}

func TestRestoreEnforcesCap(t *testing.T) {
	src := New(100, 20, nil)
	for i := 0; i < 10; i++ {
		src.ApplyLaunch(makeLaunch(fmt.Sprintf("0x%02d", i)))
	}
	snap := src.Snapshot()

	small := New(3, 20, nil)
	small.Restore(snap)

	launches := small.Launches()
	if len(launches) != 3 {
		t.Fatalf("restore must enforce the cap, got %d", len(launches))
	}
	if launches[0].PoolKey.PoolID != "0x07" {
		t.Fatalf("restore must keep the newest launches, head is %s", launches[0].PoolKey.PoolID)
	}
	if small.TrackedPools() != 3 {
		t.Fatalf("histories for dropped launches must not survive, got %d", small.TrackedPools())
	}
}
