package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"launchlens/internal/model"
)

// Store mirrors launches and rolling aggregates into Postgres for
// downstream SQL consumers. It is an optional side channel: the
// authoritative state lives in memory and in the file snapshot.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// MirrorSnapshot upserts the snapshot's launches and aggregates.
func (s *Store) MirrorSnapshot(ctx context.Context, snap model.Snapshot, stats []model.PoolStats) error {
	if err := s.upsertLaunches(ctx, snap.Launches); err != nil {
		return err
	}
	return s.upsertWindowStats(ctx, stats)
}

func (s *Store) upsertLaunches(ctx context.Context, launches []model.Launch) error {
	if len(launches) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, l := range launches {
		batch.Queue(`
			INSERT INTO launches (
				pool_id, currency0, currency1, fee, tick_spacing, hooks,
				token_address, paired_address, name, symbol, decimals, total_supply,
				created_at_block, created_at_tx, initial_sqrt_price_x96, initial_tick,
				discovered_at, metadata_error, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,now())
			ON CONFLICT (pool_id)
			DO UPDATE SET
				name = EXCLUDED.name,
				symbol = EXCLUDED.symbol,
				decimals = EXCLUDED.decimals,
				total_supply = EXCLUDED.total_supply,
				metadata_error = EXCLUDED.metadata_error,
				updated_at = now()
		`,
			l.PoolKey.PoolID,
			l.PoolKey.Currency0,
			l.PoolKey.Currency1,
			l.PoolKey.Fee,
			l.PoolKey.TickSpacing,
			l.PoolKey.Hooks,
			l.TokenAddress,
			l.PairedAddress,
			l.Name,
			l.Symbol,
			int16(l.Decimals),
			l.TotalSupply,
			int64(l.CreatedAtBlock),
			l.CreatedAtTxHash,
			l.InitialSqrtPriceX96,
			l.InitialTick,
			l.DiscoveredAt,
			nullable(l.MetadataError),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range launches {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert launches: %w", err)
		}
	}
	return nil
}

func (s *Store) upsertWindowStats(ctx context.Context, stats []model.PoolStats) error {
	if len(stats) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	queued := 0
	for _, ps := range stats {
		for _, ws := range ps.Windows {
			batch.Queue(`
				INSERT INTO pool_window_stats (
					pool_id, win, swap_count, volume, distinct_makers,
					price_change_pct, last_price, updated_at
				) VALUES ($1,$2,$3,$4,$5,$6,$7,now())
				ON CONFLICT (pool_id, win)
				DO UPDATE SET
					swap_count = EXCLUDED.swap_count,
					volume = EXCLUDED.volume,
					distinct_makers = EXCLUDED.distinct_makers,
					price_change_pct = EXCLUDED.price_change_pct,
					last_price = EXCLUDED.last_price,
					updated_at = now()
			`,
				ps.PoolID,
				ws.Window,
				ws.SwapCount,
				ws.Volume,
				ws.DistinctMakers,
				ws.PriceChangePct,
				ps.LastPrice,
			)
			queued++
		}
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert window stats: %w", err)
		}
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
