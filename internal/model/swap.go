package model

// Swap is one trade observed on a tracked pool. Ordering is
// (BlockNumber, LogIndex). Sender is the address the PoolManager saw,
// normally a router, and is used as an approximate maker identity.
type Swap struct {
	PoolID       string `json:"pool_id"`
	TxHash       string `json:"tx_hash"`
	BlockNumber  uint64 `json:"block_number"`
	LogIndex     uint64 `json:"log_index"`
	Sender       string `json:"sender"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Timestamp    uint64 `json:"timestamp"`
}
