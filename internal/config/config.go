package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	PoolManager     string
	Factory         string
	Hook            string
	PairedCurrency  string
	Lens            string
	MaxLaunches     int
	MaxSwapsPerPool int
	PollInterval    time.Duration
	PersistInterval time.Duration
	ChunkSize       uint64
	MetadataRetries int
	RPCTimeout      time.Duration
	Snapshot        string
	PGDSN           string
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LAUNCHLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("max-launches", 50)
	v.SetDefault("max-swaps-per-pool", 20)
	v.SetDefault("poll-interval", time.Second)
	v.SetDefault("persist-interval", 30*time.Second)
	v.SetDefault("chunk-size", uint64(2000))
	v.SetDefault("metadata-retries", 3)
	v.SetDefault("rpc-timeout", 10*time.Second)
	v.SetDefault("snapshot", "./data/snapshot.json")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		PoolManager:     v.GetString("pool-manager"),
		Factory:         v.GetString("factory"),
		Hook:            v.GetString("hook"),
		PairedCurrency:  v.GetString("paired-currency"),
		Lens:            v.GetString("lens"),
		MaxLaunches:     v.GetInt("max-launches"),
		MaxSwapsPerPool: v.GetInt("max-swaps-per-pool"),
		PollInterval:    v.GetDuration("poll-interval"),
		PersistInterval: v.GetDuration("persist-interval"),
		ChunkSize:       v.GetUint64("chunk-size"),
		MetadataRetries: v.GetInt("metadata-retries"),
		RPCTimeout:      v.GetDuration("rpc-timeout"),
		Snapshot:        v.GetString("snapshot"),
		PGDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks the startup-fatal requirements: a missing RPC URL or
// contract address is a configuration error, not a runtime one.
func (c Config) Validate() error {
	if strings.TrimSpace(c.RPCURL) == "" {
		return fmt.Errorf("rpc url is required")
	}
	required := []struct {
		name  string
		value string
	}{
		{"pool-manager", c.PoolManager},
		{"factory", c.Factory},
		{"hook", c.Hook},
		{"paired-currency", c.PairedCurrency},
		{"lens", c.Lens},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s address is required", field.name)
		}
	}
	if c.ChunkSize == 0 {
		return fmt.Errorf("chunk size must be greater than zero")
	}
	return nil
}

// Windows is the fixed aggregation window set.
func Windows() []time.Duration {
	return []time.Duration{5 * time.Minute, 15 * time.Minute, 30 * time.Minute, time.Hour}
}
