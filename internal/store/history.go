package store

import (
	"math/big"
	"strings"
	"time"

	"launchlens/internal/model"
)

// PoolHistory is a fixed-capacity ring of the most recent swaps for one
// pool, ordered oldest first. Aggregates are recomputed from the buffer
// contents so they can never drift from it.
type PoolHistory struct {
	capacity int
	// quoteIsCurrency0 selects which swap amount counts as volume in
	// the pool's paired currency.
	quoteIsCurrency0 bool
	swaps            []model.Swap
}

func newPoolHistory(capacity int, quoteIsCurrency0 bool) *PoolHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &PoolHistory{
		capacity:         capacity,
		quoteIsCurrency0: quoteIsCurrency0,
		swaps:            make([]model.Swap, 0, capacity),
	}
}

func (h *PoolHistory) append(swap model.Swap) {
	for _, existing := range h.swaps {
		if existing.TxHash == swap.TxHash && existing.LogIndex == swap.LogIndex {
			return
		}
	}
	if len(h.swaps) == h.capacity {
		copy(h.swaps, h.swaps[1:])
		h.swaps = h.swaps[:h.capacity-1]
	}
	h.swaps = append(h.swaps, swap)
}

func (h *PoolHistory) snapshot() []model.Swap {
	out := make([]model.Swap, len(h.swaps))
	copy(out, h.swaps)
	return out
}

// stats recomputes all window aggregates relative to now. Volume is
// normalized assuming an 18-decimal paired currency; distinct makers
// count unique swap senders, an approximation of traders since the
// PoolManager sees the router address.
func (h *PoolHistory) stats(poolID string, windows []time.Duration, now time.Time) model.PoolStats {
	stats := model.PoolStats{
		PoolID:    poolID,
		SwapCount: len(h.swaps),
		Windows:   make([]model.WindowStats, 0, len(windows)),
	}

	if len(h.swaps) > 0 {
		stats.LastPrice = priceFromSqrtX96(h.swaps[len(h.swaps)-1].SqrtPriceX96)
	}

	for _, window := range windows {
		cutoff := now.Add(-window).Unix()

		ws := model.WindowStats{Window: windowLabel(window)}
		makers := make(map[string]struct{})
		var firstPrice, lastPrice float64

		for _, swap := range h.swaps {
			if int64(swap.Timestamp) < cutoff {
				continue
			}
			ws.SwapCount++
			ws.Volume += h.quoteVolume(swap)
			makers[strings.ToLower(swap.Sender)] = struct{}{}

			price := priceFromSqrtX96(swap.SqrtPriceX96)
			if firstPrice == 0 {
				firstPrice = price
			}
			lastPrice = price
		}

		ws.DistinctMakers = len(makers)
		if firstPrice != 0 {
			ws.PriceChangePct = (lastPrice - firstPrice) / firstPrice * 100
		}
		stats.Windows = append(stats.Windows, ws)
	}

	return stats
}

func (h *PoolHistory) quoteVolume(swap model.Swap) float64 {
	raw := swap.Amount1
	if h.quoteIsCurrency0 {
		raw = swap.Amount0
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return 0
	}
	amount.Abs(amount)

	value := new(big.Float).SetInt(amount)
	value.Quo(value, big.NewFloat(1e18))
	out, _ := value.Float64()
	return out
}

func priceFromSqrtX96(raw string) float64 {
	sqrt, ok := new(big.Float).SetString(raw)
	if !ok {
		return 0
	}
	q96 := new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))
	ratio := new(big.Float).Quo(sqrt, q96)
	ratio.Mul(ratio, ratio)
	price, _ := ratio.Float64()
	return price
}

func windowLabel(d time.Duration) string {
	label := d.String()
	label = strings.TrimSuffix(label, "0s")
	label = strings.TrimSuffix(label, "0m")
	return label
}
