package indexer

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"launchlens/internal/chain"
	"launchlens/internal/correlate"
	"launchlens/internal/dex"
	"launchlens/internal/model"
	"launchlens/internal/observability"
	"launchlens/internal/store"
)

// ChainSource is the chain capability the poller needs. *chain.Client
// satisfies it; tests substitute a fake.
type ChainSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// Config holds runtime settings for the poller.
type Config struct {
	PoolManager     common.Address
	Factory         common.Address
	Hook            common.Address
	PairedCurrency  common.Address
	Lens            common.Address
	PollInterval    time.Duration
	ChunkSize       uint64
	MetadataRetries int
}

type pendingLaunch struct {
	launch   model.Launch
	attempts int
}

// Poller drives the ingestion loop: fetch, correlate, resolve, apply.
// One sequential pipeline per tick; ticks never overlap.
type Poller struct {
	cfg        Config
	chain      ChainSource
	decoder    *dex.Decoder
	correlator *correlate.Correlator
	store      *store.Store
	logger     *zap.Logger
	metrics    *observability.Metrics

	// pools awaiting metadata resolution, in discovery order
	pending map[string]*pendingLaunch
	order   []string
}

// New builds a Poller with its dependencies.
func New(cfg Config, chainSource ChainSource, stateStore *store.Store, logger *zap.Logger, metrics *observability.Metrics) (*Poller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 2000
	}
	if cfg.MetadataRetries <= 0 {
		cfg.MetadataRetries = 3
	}

	decoder, err := dex.NewDecoder()
	if err != nil {
		return nil, err
	}

	return &Poller{
		cfg:        cfg,
		chain:      chainSource,
		decoder:    decoder,
		correlator: correlate.New(cfg.Hook, logger),
		store:      stateStore,
		logger:     logger,
		metrics:    metrics,
		pending:    make(map[string]*pendingLaunch),
	}, nil
}

// Run executes the polling loop until the context is cancelled. A tick
// that has not completed suppresses later timer firings, so mutations
// always come from this single goroutine.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			p.tick(ctx)
			p.metrics.ObserveTick(time.Since(start).Seconds())
		}
	}
}

// tick runs one fetch-correlate-resolve-apply pass. Every failure path
// leaves the watermark untouched past the last fully applied chunk, so
// abandoned ranges are re-fetched next interval.
func (p *Poller) tick(ctx context.Context) {
	now := time.Now().UTC()

	latest, err := p.chain.LatestBlockNumber(ctx)
	if err != nil {
		p.logger.Warn("latest block fetch failed, tick abandoned", zap.Error(err))
		p.metrics.IncError("rpc")
		return
	}

	last := p.store.LastProcessedBlock()
	from := last + 1
	if last == 0 {
		// fresh state: resume from the current head, not genesis
		from = latest
	}

	if latest >= from {
		for _, r := range splitRange(from, latest, p.cfg.ChunkSize) {
			if err := p.processRange(ctx, r, now); err != nil {
				p.logger.Warn("range abandoned, will re-fetch",
					zap.Error(err), zap.Uint64("from", r.From), zap.Uint64("to", r.To))
				if errors.Is(err, chain.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
					p.metrics.IncError("rpc")
				}
				break
			}
		}
	}

	p.resolvePending(ctx)

	p.metrics.SetTrackedPools(p.store.TrackedPools())
}

func (p *Poller) processRange(ctx context.Context, r blockRange, now time.Time) error {
	addresses := []common.Address{p.cfg.PoolManager, p.cfg.Factory}
	logs, err := p.chain.FilterLogs(ctx, r.From, r.To, addresses, p.decoder.Topics())
	if err != nil {
		return err
	}

	decoded := make([]dex.DecodedLog, 0, len(logs))
	for _, raw := range logs {
		event, err := p.decoder.Decode(raw)
		if err != nil {
			p.logger.Warn("skipping malformed log", zap.Error(err))
			p.metrics.IncError("decode")
			continue
		}
		decoded = append(decoded, event)
	}

	for _, launch := range p.correlator.Correlate(decoded, p.isTracked, now) {
		id := strings.ToLower(launch.PoolKey.PoolID)
		p.pending[id] = &pendingLaunch{launch: launch}
		p.order = append(p.order, id)
		p.logger.Info("launch candidate discovered",
			zap.String("pool", launch.PoolKey.PoolID),
			zap.String("token", launch.TokenAddress),
			zap.Uint64("block", launch.CreatedAtBlock),
		)
	}

	if err := p.applySwaps(ctx, decoded); err != nil {
		return err
	}

	p.store.AdvanceWatermark(r.To)
	p.metrics.SetLastProcessedBlock(p.store.LastProcessedBlock())
	return nil
}

func (p *Poller) applySwaps(ctx context.Context, decoded []dex.DecodedLog) error {
	byPool := make(map[string][]model.Swap)
	total := 0

	for _, event := range decoded {
		if event.Kind != dex.KindSwap {
			continue
		}
		poolID := event.Swap.PoolID
		if !p.store.HasPool(poolID) {
			continue
		}

		ts, err := p.chain.BlockTimestamp(ctx, event.BlockNumber)
		if err != nil {
			return err
		}

		byPool[poolID] = append(byPool[poolID], model.Swap{
			PoolID:       poolID,
			TxHash:       event.TxHash,
			BlockNumber:  event.BlockNumber,
			LogIndex:     event.LogIndex,
			Sender:       event.Swap.Sender,
			Amount0:      event.Swap.Amount0,
			Amount1:      event.Swap.Amount1,
			SqrtPriceX96: event.Swap.SqrtPriceX96,
			Timestamp:    ts,
		})
		total++
	}

	for poolID, swaps := range byPool {
		p.store.ApplySwaps(poolID, swaps)
	}
	p.metrics.AddSwaps(total)
	return nil
}

func (p *Poller) isTracked(poolID string) bool {
	if p.store.HasPool(poolID) {
		return true
	}
	_, ok := p.pending[strings.ToLower(poolID)]
	return ok
}

// resolvePending issues one batched lens call covering every pending
// pool. Per-entry failures burn a retry; a failure of the whole call is
// transient and burns none. One bad token never blocks the others.
func (p *Poller) resolvePending(ctx context.Context) {
	ids := p.pendingIDs()
	if len(ids) == 0 {
		return
	}

	keys := make([]model.PoolKey, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, p.pending[id].launch.PoolKey)
	}

	var details []dex.PoolDetails
	err := withRetry(ctx, 1, 200*time.Millisecond, func(ctx context.Context) error {
		var callErr error
		details, callErr = dex.DescribePools(ctx, p.chain, p.cfg.Lens, keys)
		return callErr
	})
	if err != nil {
		p.logger.Warn("metadata batch call failed", zap.Error(err), zap.Int("pending", len(keys)))
		p.metrics.IncError("rpc")
		return
	}

	committed := 0
	for i, id := range ids {
		entry := p.pending[id]
		detail := details[i]

		if detail.Success {
			p.store.ApplyLaunch(p.finalizeLaunch(entry.launch, detail))
			delete(p.pending, id)
			committed++
			continue
		}

		entry.attempts++
		if entry.attempts < p.cfg.MetadataRetries {
			continue
		}

		launch := entry.launch
		launch.MetadataError = detail.Reason
		if launch.MetadataError == "" {
			launch.MetadataError = "metadata unresolved"
		}
		p.store.ApplyLaunch(launch)
		delete(p.pending, id)
		committed++
		p.metrics.IncError("metadata")
		p.logger.Warn("launch recorded with unresolved metadata",
			zap.String("pool", launch.PoolKey.PoolID),
			zap.String("reason", launch.MetadataError),
		)
	}

	p.metrics.AddLaunches(committed)
}

func (p *Poller) finalizeLaunch(launch model.Launch, detail dex.PoolDetails) model.Launch {
	token := detail.Token1
	if strings.EqualFold(launch.TokenAddress, launch.PoolKey.Currency0) {
		token = detail.Token0
	}

	// resolved metadata wins over the factory event's launch parameters
	if token.Name != "" {
		launch.Name = token.Name
	}
	if token.Symbol != "" {
		launch.Symbol = token.Symbol
	}
	launch.Decimals = token.Decimals
	if token.TotalSupply != "" && token.TotalSupply != "0" {
		launch.TotalSupply = token.TotalSupply
	}
	return launch
}

func (p *Poller) pendingIDs() []string {
	if len(p.pending) == 0 {
		p.order = p.order[:0]
		return nil
	}

	ids := p.order[:0]
	for _, id := range p.order {
		if _, ok := p.pending[id]; ok {
			ids = append(ids, id)
		}
	}
	p.order = ids
	return ids
}
