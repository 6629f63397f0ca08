package model

// WindowStats holds rolling aggregates for one trailing window.
// Volume is the absolute traded amount of the pool's paired currency,
// normalized to whole units. PriceChangePct compares the last in-window
// trade price against the earliest one, as a signed percentage.
type WindowStats struct {
	Window         string  `json:"window"`
	SwapCount      int     `json:"swap_count"`
	Volume         float64 `json:"volume"`
	DistinctMakers int     `json:"distinct_makers"`
	PriceChangePct float64 `json:"price_change_pct"`
}

// PoolStats is the aggregate view of a tracked pool's recent activity.
type PoolStats struct {
	PoolID    string        `json:"pool_id"`
	LastPrice float64       `json:"last_price"`
	SwapCount int           `json:"swap_count"`
	Windows   []WindowStats `json:"windows"`
}
