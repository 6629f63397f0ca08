package chain

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps go-ethereum RPC with bounded per-call timeouts so a
// stalled endpoint cannot wedge the poll loop.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	timeout   time.Duration

	mu      sync.RWMutex
	tsCache map[uint64]uint64
}

// NewClient dials the RPC URL. timeout bounds every subsequent call.
func NewClient(ctx context.Context, rpcURL string, timeout time.Duration) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, classify(err)
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		timeout:   timeout,
		tsCache:   make(map[uint64]uint64),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// LatestBlockNumber returns the current chain head.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	head, err := c.ethClient.BlockNumber(ctx)
	return head, classify(err)
}

// FilterLogs returns logs in [fromBlock, toBlock] for the given
// addresses, optionally restricted to a topic0 set.
func (c *Client) FilterLogs(
	ctx context.Context,
	fromBlock uint64,
	toBlock uint64,
	addresses []common.Address,
	topic0 []common.Hash,
) ([]types.Log, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
	}
	if len(topic0) > 0 {
		query.Topics = [][]common.Hash{topic0}
	}

	logs, err := c.ethClient.FilterLogs(ctx, query)
	return logs, classify(err)
}

// CallContract performs a read-only eth_call.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.ethClient.CallContract(ctx, msg, blockNumber)
	return resp, classify(err)
}

// BlockTimestamp returns the block timestamp, using an in-memory cache.
// Swap logs carry no timestamp, so every ingested block needs one header
// fetch at most.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.tsCache[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	header, err := c.ethClient.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, classify(err)
	}

	ts = header.Time
	c.mu.Lock()
	c.tsCache[number] = ts
	c.mu.Unlock()

	return ts, nil
}

// NativeBalance returns the current native-currency balance of a wallet.
// This is the balance-check collaborator boundary; the indexing pipeline
// itself never calls it.
func (c *Client) NativeBalance(ctx context.Context, wallet common.Address) (*big.Int, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	balance, err := c.ethClient.BalanceAt(ctx, wallet, nil)
	return balance, classify(err)
}
