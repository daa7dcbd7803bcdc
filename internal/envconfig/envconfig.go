// Package envconfig loads binary configuration from the process environment
// and optional .env files, and turns it into an engine config, a store and a
// logger.
package envconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/store"
	"github.com/MrEthical07/authcore/store/memory"
	"github.com/MrEthical07/authcore/store/postgres"
	redisstore "github.com/MrEthical07/authcore/store/redis"
	"github.com/MrEthical07/authcore/store/sqlite"
)

// Store backends accepted by AUTHCORE_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

// ErrUnknownStore is returned by [Config.OpenStore] for an unsupported backend.
var ErrUnknownStore = errors.New("envconfig: unknown store backend")

// Config is the environment surface shared by the authcore binaries.
type Config struct {
	AccessSecret  string        `env:"AUTHCORE_ACCESS_SECRET"`
	RefreshSecret string        `env:"AUTHCORE_REFRESH_SECRET"`
	Issuer        string        `env:"AUTHCORE_ISSUER" envDefault:"authcore"`
	Audience      string        `env:"AUTHCORE_AUDIENCE" envDefault:"authcore"`
	AccessTTL     time.Duration `env:"AUTHCORE_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"AUTHCORE_REFRESH_TTL" envDefault:"168h"`
	BcryptCost    int           `env:"AUTHCORE_BCRYPT_COST" envDefault:"12"`

	Store       string `env:"AUTHCORE_STORE" envDefault:"memory"`
	DatabaseURL string `env:"AUTHCORE_DATABASE_URL"`
	SQLitePath  string `env:"AUTHCORE_SQLITE_PATH" envDefault:"authcore.db"`
	RedisAddr   string `env:"AUTHCORE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix string `env:"AUTHCORE_REDIS_PREFIX" envDefault:"authcore"`

	SweepInterval time.Duration `env:"AUTHCORE_SWEEP_INTERVAL" envDefault:"10m"`
	LogLevel      string        `env:"AUTHCORE_LOG_LEVEL" envDefault:"info"`
}

// Load parses the process environment layered over the given .env files.
// Missing files are skipped; variables already set in the process win over
// file values. With no files, ".env" in the working directory is tried.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	merged := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
		for k, v := range vals {
			merged[k] = v
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		merged[k] = v
	}
	return parse(merged)
}

func parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	return cfg, nil
}

// EngineConfig maps c onto [authcore.DefaultConfig] and validates the result.
// Missing or short secrets fail with [authcore.KindConfiguration].
func (c Config) EngineConfig() (authcore.Config, error) {
	cfg := authcore.DefaultConfig()
	cfg.Tokens.AccessSecret = []byte(c.AccessSecret)
	cfg.Tokens.RefreshSecret = []byte(c.RefreshSecret)
	cfg.Tokens.Issuer = c.Issuer
	cfg.Tokens.Audience = c.Audience
	cfg.Tokens.AccessTTL = c.AccessTTL
	cfg.Tokens.RefreshTTL = c.RefreshTTL
	cfg.Password.BcryptCost = c.BcryptCost

	if err := cfg.Validate(); err != nil {
		return authcore.Config{}, err
	}
	return cfg, nil
}

// OpenStore connects the configured backend. The returned close function
// releases its connections and is never nil.
func (c Config) OpenStore(ctx context.Context) (store.CredentialStore, func() error, error) {
	noop := func() error { return nil }

	switch c.Store {
	case "", StoreMemory:
		return memory.New(), noop, nil

	case StorePostgres:
		if c.DatabaseURL == "" {
			return nil, noop, errors.New("envconfig: AUTHCORE_DATABASE_URL is required for the postgres store")
		}
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		s := postgres.New(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ensure schema: %w", err)
		}
		return s, func() error { pool.Close(); return nil }, nil

	case StoreSQLite:
		s, err := sqlite.Open(c.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		return s, s.Close, nil

	case StoreRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: c.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.New(rdb, redisstore.WithPrefix(c.RedisPrefix)), rdb.Close, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
}

// NewLogger builds a JSON logger at c.LogLevel. Unknown levels fall back to
// info.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
