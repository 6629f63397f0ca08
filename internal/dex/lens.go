package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"launchlens/internal/model"
)

// Caller is the minimal read-only contract interface the lens needs.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// PoolDetails is one per-pool entry of a batched lens response. Success
// is false when the lens could not read either token, with Reason
// carrying the revert string.
type PoolDetails struct {
	Token0  model.TokenDetails
	Token1  model.TokenDetails
	Success bool
	Reason  string
}

type lensPair struct {
	Currency0 common.Address
	Currency1 common.Address
}

type lensToken struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

type lensDescription struct {
	Token0  lensToken
	Token1  lensToken
	Success bool
	Reason  string
}

// DescribePools resolves metadata for all keys in a single eth_call to
// the lens contract. The response is positionally aligned with keys.
func DescribePools(ctx context.Context, caller Caller, lens common.Address, keys []model.PoolKey) ([]PoolDetails, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	parsed, err := LensABI()
	if err != nil {
		return nil, fmt.Errorf("parse lens abi: %w", err)
	}

	pairs := make([]lensPair, 0, len(keys))
	for _, key := range keys {
		if !common.IsHexAddress(key.Currency0) || !common.IsHexAddress(key.Currency1) {
			return nil, fmt.Errorf("invalid currency in pool key %s", key.PoolID)
		}
		pairs = append(pairs, lensPair{
			Currency0: common.HexToAddress(key.Currency0),
			Currency1: common.HexToAddress(key.Currency1),
		})
	}

	data, err := parsed.Pack("describePools", pairs)
	if err != nil {
		return nil, fmt.Errorf("pack describePools: %w", err)
	}

	msg := ethereum.CallMsg{To: &lens, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call describePools: %w", err)
	}

	values, err := parsed.Unpack("describePools", resp)
	if err != nil {
		return nil, fmt.Errorf("unpack describePools: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected describePools outputs: %d", len(values))
	}

	descriptions := *abi.ConvertType(values[0], new([]lensDescription)).(*[]lensDescription)
	if len(descriptions) != len(keys) {
		return nil, fmt.Errorf("describePools returned %d entries for %d keys", len(descriptions), len(keys))
	}

	out := make([]PoolDetails, 0, len(descriptions))
	for _, desc := range descriptions {
		out = append(out, PoolDetails{
			Token0:  tokenDetails(desc.Token0),
			Token1:  tokenDetails(desc.Token1),
			Success: desc.Success,
			Reason:  desc.Reason,
		})
	}
	return out, nil
}

func tokenDetails(t lensToken) model.TokenDetails {
	supply := "0"
	if t.TotalSupply != nil {
		supply = t.TotalSupply.String()
	}
	return model.TokenDetails{
		Name:        t.Name,
		Symbol:      t.Symbol,
		Decimals:    t.Decimals,
		TotalSupply: supply,
	}
}
