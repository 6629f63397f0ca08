package model

import "time"

// TokenDetails captures resolved ERC20 metadata. Big integers are
// string-encoded to survive JSON round-trips without precision loss.
type TokenDetails struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"total_supply"`
}

// Launch records one token's debut pool. Created once per pool id the
// first time a matching Initialize+TokenCreated pair is observed;
// immutable afterwards.
type Launch struct {
	PoolKey             PoolKey   `json:"pool_key"`
	TokenAddress        string    `json:"token_address"`
	PairedAddress       string    `json:"paired_address"`
	Name                string    `json:"name"`
	Symbol              string    `json:"symbol"`
	Decimals            uint8     `json:"decimals"`
	TotalSupply         string    `json:"total_supply"`
	CreatedAtBlock      uint64    `json:"created_at_block"`
	CreatedAtTxHash     string    `json:"created_at_tx_hash"`
	InitialSqrtPriceX96 string    `json:"initial_sqrt_price_x96"`
	InitialTick         int32     `json:"initial_tick"`
	DiscoveredAt        time.Time `json:"discovered_at"`
	MetadataError       string    `json:"metadata_error,omitempty"`
}
