package model

// PoolKey uniquely identifies a V4 pool. A pool is only tracked when its
// hooks address equals the configured launch-factory hook.
type PoolKey struct {
	PoolID      string `json:"pool_id"`
	Currency0   string `json:"currency0"`
	Currency1   string `json:"currency1"`
	Fee         uint32 `json:"fee"`
	TickSpacing int32  `json:"tick_spacing"`
	Hooks       string `json:"hooks"`
}
