// Package config loads memstored settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/IvanBrykalov/memstore/cache"
	"github.com/IvanBrykalov/memstore/internal/util"
)

// Prefix is prepended to every variable name.
const Prefix = "MEMSTORE_"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed.
	ErrParsingConfig = errors.New("config: failed to parse environment")
	// ErrUnknownHash is returned for an unsupported MEMSTORE_HASH value.
	ErrUnknownHash = errors.New("config: unknown hash")
)

// Config holds daemon settings.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	MemoryLimit     int64         `env:"MEMORY_LIMIT" envDefault:"67108864"`
	Shards          int           `env:"SHARDS" envDefault:"0"`
	MinShardBytes   int64         `env:"MIN_SHARD_BYTES" envDefault:"1048576"`
	Hash            string        `env:"HASH" envDefault:"xxhash"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads the optional .env files (the default ".env" when none are given;
// missing files are ignored) and parses the environment into a Config.
// Variables already set in the environment win over .env entries.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrParsingConfig, f, err)
		}
	}

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: Prefix})
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if _, ok := util.HashByName(cfg.Hash); !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownHash, cfg.Hash)
	}
	return cfg, nil
}

// CacheOptions maps the config onto cache.Options. Hooks (metrics, logger,
// loader) are left for the caller to fill in.
func (c Config) CacheOptions() cache.Options {
	hash, _ := util.HashByName(c.Hash)
	return cache.Options{
		MemoryLimit:      c.MemoryLimit,
		Shards:           c.Shards,
		MinShardCapacity: c.MinShardBytes,
		Hash:             hash,
	}
}
