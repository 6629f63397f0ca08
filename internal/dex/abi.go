package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const poolManagerABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "PoolId", "name": "id", "type": "bytes32"},
      {"indexed": true, "internalType": "Currency", "name": "currency0", "type": "address"},
      {"indexed": true, "internalType": "Currency", "name": "currency1", "type": "address"},
      {"indexed": false, "internalType": "uint24", "name": "fee", "type": "uint24"},
      {"indexed": false, "internalType": "int24", "name": "tickSpacing", "type": "int24"},
      {"indexed": false, "internalType": "contract IHooks", "name": "hooks", "type": "address"},
      {"indexed": false, "internalType": "uint160", "name": "sqrtPriceX96", "type": "uint160"},
      {"indexed": false, "internalType": "int24", "name": "tick", "type": "int24"}
    ],
    "name": "Initialize",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "PoolId", "name": "id", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "int128", "name": "amount0", "type": "int128"},
      {"indexed": false, "internalType": "int128", "name": "amount1", "type": "int128"},
      {"indexed": false, "internalType": "uint160", "name": "sqrtPriceX96", "type": "uint160"},
      {"indexed": false, "internalType": "uint128", "name": "liquidity", "type": "uint128"},
      {"indexed": false, "internalType": "int24", "name": "tick", "type": "int24"},
      {"indexed": false, "internalType": "uint24", "name": "fee", "type": "uint24"}
    ],
    "name": "Swap",
    "type": "event"
  }
]`

const factoryABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": true, "internalType": "bytes32", "name": "poolId", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "deployer", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "name", "type": "string"},
      {"indexed": false, "internalType": "string", "name": "symbol", "type": "string"},
      {"indexed": false, "internalType": "uint256", "name": "totalSupply", "type": "uint256"}
    ],
    "name": "TokenCreated",
    "type": "event"
  }
]`

const lensABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "currency0", "type": "address"},
          {"internalType": "address", "name": "currency1", "type": "address"}
        ],
        "internalType": "struct PoolLens.Pair[]",
        "name": "pairs",
        "type": "tuple[]"
      }
    ],
    "name": "describePools",
    "outputs": [
      {
        "components": [
          {
            "components": [
              {"internalType": "string", "name": "name", "type": "string"},
              {"internalType": "string", "name": "symbol", "type": "string"},
              {"internalType": "uint8", "name": "decimals", "type": "uint8"},
              {"internalType": "uint256", "name": "totalSupply", "type": "uint256"}
            ],
            "internalType": "struct PoolLens.TokenDetails",
            "name": "token0",
            "type": "tuple"
          },
          {
            "components": [
              {"internalType": "string", "name": "name", "type": "string"},
              {"internalType": "string", "name": "symbol", "type": "string"},
              {"internalType": "uint8", "name": "decimals", "type": "uint8"},
              {"internalType": "uint256", "name": "totalSupply", "type": "uint256"}
            ],
            "internalType": "struct PoolLens.TokenDetails",
            "name": "token1",
            "type": "tuple"
          },
          {"internalType": "bool", "name": "success", "type": "bool"},
          {"internalType": "string", "name": "reason", "type": "string"}
        ],
        "internalType": "struct PoolLens.PoolDescription[]",
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	poolManagerOnce sync.Once
	poolManagerABI  abi.ABI
	poolManagerErr  error

	factoryOnce sync.Once
	factoryABI  abi.ABI
	factoryErr  error

	lensOnce sync.Once
	lensABI  abi.ABI
	lensErr  error
)

// PoolManagerABI returns the parsed V4 PoolManager event ABI.
func PoolManagerABI() (abi.ABI, error) {
	poolManagerOnce.Do(func() {
		poolManagerABI, poolManagerErr = abi.JSON(strings.NewReader(poolManagerABIJSON))
	})
	return poolManagerABI, poolManagerErr
}

// FactoryABI returns the parsed launch-factory event ABI.
func FactoryABI() (abi.ABI, error) {
	factoryOnce.Do(func() {
		factoryABI, factoryErr = abi.JSON(strings.NewReader(factoryABIJSON))
	})
	return factoryABI, factoryErr
}

// LensABI returns the parsed metadata lens ABI.
func LensABI() (abi.ABI, error) {
	lensOnce.Do(func() {
		lensABI, lensErr = abi.JSON(strings.NewReader(lensABIJSON))
	})
	return lensABI, lensErr
}
