package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		RPCURL:         "https://mainnet.example.org",
		PoolManager:    "0x1111111111111111111111111111111111111111",
		Factory:        "0x2222222222222222222222222222222222222222",
		Hook:           "0x4444444444444444444444444444444444444444",
		PairedCurrency: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		Lens:           "0x5555555555555555555555555555555555555555",
		ChunkSize:      2000,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.MaxLaunches != 50 || cfg.MaxSwapsPerPool != 20 {
		t.Fatalf("cap defaults mismatch: %+v", cfg)
	}
	if cfg.PollInterval != time.Second || cfg.PersistInterval != 30*time.Second {
		t.Fatalf("interval defaults mismatch: %+v", cfg)
	}
	if cfg.ChunkSize != 2000 || cfg.MetadataRetries != 3 {
		t.Fatalf("indexer defaults mismatch: %+v", cfg)
	}
	if cfg.RPCTimeout != 10*time.Second {
		t.Fatalf("rpc timeout default mismatch: %v", cfg.RPCTimeout)
	}
	if cfg.Snapshot != "./data/snapshot.json" || cfg.LogLevel != "info" {
		t.Fatalf("path/log defaults mismatch: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	missing := validConfig()
	missing.RPCURL = ""
	if err := missing.Validate(); err == nil {
		t.Fatalf("missing rpc url must fail validation")
	}

	noHook := validConfig()
	noHook.Hook = "  "
	if err := noHook.Validate(); err == nil {
		t.Fatalf("blank hook address must fail validation")
	}

	badChunk := validConfig()
	badChunk.ChunkSize = 0
	if err := badChunk.Validate(); err == nil {
		t.Fatalf("zero chunk size must fail validation")
	}
}

func TestWindows(t *testing.T) {
	windows := Windows()
	want := []time.Duration{5 * time.Minute, 15 * time.Minute, 30 * time.Minute, time.Hour}
	if len(windows) != len(want) {
		t.Fatalf("window count mismatch: %v", windows)
	}
	for i := range want {
		if windows[i] != want[i] {
			t.Fatalf("window %d mismatch: %v != %v", i, windows[i], want[i])
		}
	}
}
