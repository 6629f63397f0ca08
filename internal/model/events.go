package model

// InitializeEvent is the decoded PoolManager Initialize payload.
type InitializeEvent struct {
	PoolID       string `json:"pool_id"`
	Currency0    string `json:"currency0"`
	Currency1    string `json:"currency1"`
	Fee          uint32 `json:"fee"`
	TickSpacing  int32  `json:"tick_spacing"`
	Hooks        string `json:"hooks"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
}

// TokenCreatedEvent is the decoded launch-factory TokenCreated payload.
type TokenCreatedEvent struct {
	Token       string `json:"token"`
	PoolID      string `json:"pool_id"`
	Deployer    string `json:"deployer"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply string `json:"total_supply"`
}

// SwapEvent is the decoded PoolManager Swap payload.
type SwapEvent struct {
	PoolID       string `json:"pool_id"`
	Sender       string `json:"sender"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Liquidity    string `json:"liquidity"`
	Tick         int32  `json:"tick"`
	Fee          uint32 `json:"fee"`
}
