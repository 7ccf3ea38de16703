package config

import (
    "github.com/spf13/viper"
    "time"
    "fmt"
)

type Config struct {
    Server struct {
        Address string
    }
    Ethereum struct {
        BeaconAPI string
        RPCHTTP   string
    }
    Chain struct {
        SlotSeconds      uint64
        MaxEffectiveGwei uint64
    }
    Scan struct {
        Concurrency      int
        RequestTimeout   time.Duration
        ProgressInterval time.Duration
    }
    Retry struct {
        MaxAttempts int
        Backoff     time.Duration
    }
    Cache struct {
        Validators struct {
            MaxEntries int           `mapstructure:"CACHE_VALIDATORS_MAX_ENTRIES"`
            TTL        time.Duration `mapstructure:"CACHE_VALIDATORS_TTL"`
        }
    }
}

func Load() (*Config, error) {
    v := viper.New()
    v.SetConfigFile("config.json")
    v.AutomaticEnv()

    v.SetDefault("SERVER_ADDRESS", ":8080")
    v.SetDefault("BEACON_API_URL", "default_value")
    v.SetDefault("ETH_RPC_HTTP", "default_value")
    v.SetDefault("SLOT_SECONDS", 12)
    v.SetDefault("MAX_EFFECTIVE_BALANCE_GWEI", uint64(32_000_000_000))
    v.SetDefault("SCAN_CONCURRENCY", 90)
    v.SetDefault("REQUEST_TIMEOUT", "30s")
    v.SetDefault("PROGRESS_INTERVAL", "5s")
    v.SetDefault("RETRY_MAX_ATTEMPTS", 5)
    v.SetDefault("RETRY_BACKOFF", "1s")
    v.SetDefault("CACHE_VALIDATORS_MAX_ENTRIES", 8192)
    v.SetDefault("CACHE_VALIDATORS_TTL", "60m")

    if err := v.ReadInConfig(); err != nil {
        if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
            return nil, err
        }
    }

    cfg := &Config{}
    cfg.Server.Address = v.GetString("SERVER_ADDRESS")
    cfg.Ethereum.BeaconAPI = v.GetString("BEACON_API_URL")
    cfg.Ethereum.RPCHTTP = v.GetString("ETH_RPC_HTTP")

    cfg.Chain.SlotSeconds = v.GetUint64("SLOT_SECONDS")
    cfg.Chain.MaxEffectiveGwei = v.GetUint64("MAX_EFFECTIVE_BALANCE_GWEI")

    cfg.Scan.Concurrency = v.GetInt("SCAN_CONCURRENCY")
    cfg.Scan.RequestTimeout = v.GetDuration("REQUEST_TIMEOUT")
    cfg.Scan.ProgressInterval = v.GetDuration("PROGRESS_INTERVAL")

    cfg.Retry.MaxAttempts = v.GetInt("RETRY_MAX_ATTEMPTS")
    cfg.Retry.Backoff = v.GetDuration("RETRY_BACKOFF")

    cfg.Cache.Validators.MaxEntries = v.GetInt("CACHE_VALIDATORS_MAX_ENTRIES")
    cfg.Cache.Validators.TTL = v.GetDuration("CACHE_VALIDATORS_TTL")

    if cfg.Server.Address == "" {
        return nil, fmt.Errorf("SERVER_ADDRESS must not be empty")
    }
    if cfg.Ethereum.BeaconAPI == "" {
        return nil, fmt.Errorf("BEACON_API_URL must not be empty")
    }
    if cfg.Ethereum.RPCHTTP == "" {
        return nil, fmt.Errorf("ETH_RPC_HTTP must not be empty")
    }
    if cfg.Chain.SlotSeconds < 1 {
        return nil, fmt.Errorf("SLOT_SECONDS must be ≥ 1")
    }
    if cfg.Scan.Concurrency < 1 {
        return nil, fmt.Errorf("SCAN_CONCURRENCY must be ≥ 1")
    }
    if cfg.Retry.MaxAttempts < 1 {
        return nil, fmt.Errorf("RETRY_MAX_ATTEMPTS must be ≥ 1")
    }

    return cfg, nil
}
