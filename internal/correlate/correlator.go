package correlate

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"launchlens/internal/dex"
	"launchlens/internal/model"
)

// TrackedFunc reports whether a pool id is already known, either
// committed to the store or pending metadata resolution. Correlation
// uses it to stay idempotent over re-fetched block ranges.
type TrackedFunc func(poolID string) bool

// Correlator pairs same-transaction Initialize and TokenCreated logs
// into candidate launches.
type Correlator struct {
	hook   common.Address
	logger *zap.Logger
}

func New(hook common.Address, logger *zap.Logger) *Correlator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Correlator{hook: hook, logger: logger}
}

type txPair struct {
	initialize *dex.DecodedLog
	created    *dex.DecodedLog
}

// Correlate scans a decoded batch and returns new launches awaiting
// metadata, in discovery order. Pools whose hooks do not match the
// launch-factory hook are not launches and are dropped silently.
func (c *Correlator) Correlate(logs []dex.DecodedLog, tracked TrackedFunc, now time.Time) []model.Launch {
	pairs := make(map[string]*txPair)
	order := make([]string, 0)

	for i := range logs {
		log := &logs[i]
		if log.Kind != dex.KindInitialize && log.Kind != dex.KindTokenCreated {
			continue
		}
		pair := pairs[log.TxHash]
		if pair == nil {
			pair = &txPair{}
			pairs[log.TxHash] = pair
			order = append(order, log.TxHash)
		}
		switch log.Kind {
		case dex.KindInitialize:
			pair.initialize = log
		case dex.KindTokenCreated:
			pair.created = log
		}
	}

	launches := make([]model.Launch, 0)
	for _, txHash := range order {
		pair := pairs[txHash]
		if pair.initialize == nil || pair.created == nil {
			continue
		}

		init := pair.initialize.Initialize
		created := pair.created.TokenCreated

		if !strings.EqualFold(init.Hooks, c.hook.Hex()) {
			continue
		}
		if !strings.EqualFold(init.PoolID, created.PoolID) {
			c.logger.Warn("pool id mismatch in launch transaction",
				zap.String("tx", txHash),
				zap.String("initialize_pool", init.PoolID),
				zap.String("created_pool", created.PoolID),
			)
			continue
		}
		if tracked != nil && tracked(init.PoolID) {
			continue
		}

		paired := init.Currency1
		if strings.EqualFold(created.Token, init.Currency1) {
			paired = init.Currency0
		}

		launches = append(launches, model.Launch{
			PoolKey: model.PoolKey{
				PoolID:      init.PoolID,
				Currency0:   init.Currency0,
				Currency1:   init.Currency1,
				Fee:         init.Fee,
				TickSpacing: init.TickSpacing,
				Hooks:       init.Hooks,
			},
			TokenAddress:        created.Token,
			PairedAddress:       paired,
			Name:                created.Name,
			Symbol:              created.Symbol,
			TotalSupply:         created.TotalSupply,
			CreatedAtBlock:      pair.initialize.BlockNumber,
			CreatedAtTxHash:     txHash,
			InitialSqrtPriceX96: init.SqrtPriceX96,
			InitialTick:         init.Tick,
			DiscoveredAt:        now,
		})
	}

	return launches
}
