package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"launchlens/internal/chain"
	"launchlens/internal/config"
	"launchlens/internal/indexer"
	"launchlens/internal/observability"
	"launchlens/internal/store"
	"launchlens/internal/store/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "launchlens",
		Short:        "Token launch tracker",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the launch tracker",
		RunE:  runTracker,
	}

	runCmd.Flags().String("rpc", "", "chain RPC URL")
	runCmd.Flags().String("pool-manager", "", "V4 PoolManager address")
	runCmd.Flags().String("factory", "", "launch factory address")
	runCmd.Flags().String("hook", "", "launch factory hook address")
	runCmd.Flags().String("paired-currency", "", "paired currency address (e.g. WETH)")
	runCmd.Flags().String("lens", "", "metadata lens contract address")
	runCmd.Flags().Int("max-launches", 50, "recent launches kept in memory")
	runCmd.Flags().Int("max-swaps-per-pool", 20, "swaps kept per pool")
	runCmd.Flags().Duration("poll-interval", time.Second, "block poll interval")
	runCmd.Flags().Duration("persist-interval", 30*time.Second, "snapshot persist interval")
	runCmd.Flags().Uint64("chunk-size", 2000, "blocks per getLogs call")
	runCmd.Flags().Int("metadata-retries", 3, "metadata resolution attempts per pool")
	runCmd.Flags().Duration("rpc-timeout", 10*time.Second, "per-call RPC timeout")
	runCmd.Flags().String("snapshot", "./data/snapshot.json", "snapshot file path")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the mirror")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print a summary of the last persisted snapshot",
		RunE:  runStatus,
	}
	statusCmd.Flags().String("snapshot", "./data/snapshot.json", "snapshot file path")

	root.AddCommand(statusCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTracker(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	poolManager, err := indexer.ParseAddress("pool-manager", cfg.PoolManager)
	if err != nil {
		return err
	}
	factory, err := indexer.ParseAddress("factory", cfg.Factory)
	if err != nil {
		return err
	}
	hook, err := indexer.ParseAddress("hook", cfg.Hook)
	if err != nil {
		return err
	}
	paired, err := indexer.ParseAddress("paired-currency", cfg.PairedCurrency)
	if err != nil {
		return err
	}
	lens, err := indexer.ParseAddress("lens", cfg.Lens)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, cfg.RPCTimeout)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	stateStore := store.New(cfg.MaxLaunches, cfg.MaxSwapsPerPool, config.Windows())
	if snap, ok := store.LoadSnapshot(cfg.Snapshot, logger); ok {
		stateStore.Restore(snap)
		logger.Info("state restored from snapshot",
			zap.Uint64("last_processed", snap.LastProcessedBlock),
			zap.Int("launches", len(snap.Launches)),
		)
	}

	var mirror store.Mirror
	if cfg.PGDSN != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		mirror = pgStore
	}

	poller, err := indexer.New(indexer.Config{
		PoolManager:     poolManager,
		Factory:         factory,
		Hook:            hook,
		PairedCurrency:  paired,
		Lens:            lens,
		PollInterval:    cfg.PollInterval,
		ChunkSize:       cfg.ChunkSize,
		MetadataRetries: cfg.MetadataRetries,
	}, chainClient, stateStore, logger, metrics)
	if err != nil {
		return err
	}

	persister := store.NewPersister(cfg.Snapshot, stateStore, cfg.PersistInterval, mirror, logger, metrics)
	persistDone := make(chan struct{})
	go func() {
		defer close(persistDone)
		persister.Run(ctx)
	}()

	logger.Info("tracker start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pool_manager", poolManager.Hex()),
		zap.String("factory", factory.Hex()),
		zap.String("hook", hook.Hex()),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Uint64("chunk_size", cfg.ChunkSize),
		zap.String("snapshot", cfg.Snapshot),
		zap.Bool("pg_mirror", mirror != nil),
	)

	err = poller.Run(ctx)
	<-persistDone

	if errors.Is(err, context.Canceled) {
		logger.Info("tracker stopped")
		return nil
	}
	return err
}

func runStatus(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("snapshot")

	snap, ok := store.LoadSnapshot(path, zap.NewNop())
	if !ok {
		return fmt.Errorf("no usable snapshot at %s", path)
	}

	fmt.Printf("snapshot: %s\n", path)
	fmt.Printf("saved_at: %s\n", snap.SavedAt)
	fmt.Printf("last_processed_block: %d\n", snap.LastProcessedBlock)
	fmt.Printf("launches: %d\n", len(snap.Launches))
	for _, launch := range snap.Launches {
		fmt.Printf("  %s  %-12s  block=%d  swaps=%d\n",
			launch.PoolKey.PoolID, launch.Symbol, launch.CreatedAtBlock,
			len(snap.Histories[launch.PoolKey.PoolID]))
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
