package envconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/store/memory"
	redisstore "github.com/MrEthical07/authcore/store/redis"
	"github.com/MrEthical07/authcore/store/sqlite"
)

var (
	accessSecret  = strings.Repeat("a", 32)
	refreshSecret = strings.Repeat("r", 32)
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, "authcore", cfg.Issuer)
	require.Equal(t, "authcore", cfg.Audience)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 12, cfg.BcryptCost)
	require.Equal(t, StoreMemory, cfg.Store)
	require.Equal(t, 10*time.Minute, cfg.SweepInterval)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := parse(map[string]string{
		"AUTHCORE_ACCESS_SECRET":  accessSecret,
		"AUTHCORE_REFRESH_SECRET": refreshSecret,
		"AUTHCORE_ACCESS_TTL":     "5m",
		"AUTHCORE_REFRESH_TTL":    "24h",
		"AUTHCORE_BCRYPT_COST":    "10",
		"AUTHCORE_STORE":          " Redis ",
		"AUTHCORE_SWEEP_INTERVAL": "30s",
	})
	require.NoError(t, err)

	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 10, cfg.BcryptCost)
	require.Equal(t, StoreRedis, cfg.Store)
	require.Equal(t, 30*time.Second, cfg.SweepInterval)
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := parse(map[string]string{"AUTHCORE_ACCESS_TTL": "soon"})
	require.Error(t, err)
}

func TestLoadLayersProcessEnvOverDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "AUTHCORE_ISSUER=from-file\nAUTHCORE_AUDIENCE=file-aud\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("AUTHCORE_ISSUER", "from-env")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Issuer)
	require.Equal(t, "file-aud", cfg.Audience)
}

func TestEngineConfigRequiresSecrets(t *testing.T) {
	cfg, err := parse(map[string]string{})
	require.NoError(t, err)

	_, err = cfg.EngineConfig()
	require.Error(t, err)
	require.Equal(t, authcore.KindConfiguration, authcore.KindOf(err))
	require.True(t, errors.Is(err, authcore.ErrConfiguration))
}

func TestEngineConfigMapsFields(t *testing.T) {
	cfg, err := parse(map[string]string{
		"AUTHCORE_ACCESS_SECRET":  accessSecret,
		"AUTHCORE_REFRESH_SECRET": refreshSecret,
		"AUTHCORE_ISSUER":         "issuer-x",
		"AUTHCORE_BCRYPT_COST":    "4",
	})
	require.NoError(t, err)

	ec, err := cfg.EngineConfig()
	require.NoError(t, err)
	require.Equal(t, []byte(accessSecret), ec.Tokens.AccessSecret)
	require.Equal(t, []byte(refreshSecret), ec.Tokens.RefreshSecret)
	require.Equal(t, "issuer-x", ec.Tokens.Issuer)
	require.Equal(t, 4, ec.Password.BcryptCost)

	_, err = authcore.New().WithConfig(ec).WithStore(memory.New()).Build()
	require.NoError(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, closeFn, err := Config{Store: StoreMemory}.OpenStore(ctx)
		require.NoError(t, err)
		require.IsType(t, &memory.Store{}, s)
		require.NoError(t, closeFn())
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "auth.db")
		s, closeFn, err := Config{Store: StoreSQLite, SQLitePath: path}.OpenStore(ctx)
		require.NoError(t, err)
		require.IsType(t, &sqlite.Store{}, s)
		require.NoError(t, closeFn())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, closeFn, err := Config{Store: StoreRedis, RedisAddr: mr.Addr(), RedisPrefix: "t"}.OpenStore(ctx)
		require.NoError(t, err)
		require.IsType(t, &redisstore.Store{}, s)
		require.NoError(t, closeFn())
	})

	t.Run("postgres without url", func(t *testing.T) {
		_, closeFn, err := Config{Store: StorePostgres}.OpenStore(ctx)
		require.Error(t, err)
		require.NotNil(t, closeFn)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := Config{Store: "etcd"}.OpenStore(ctx)
		require.ErrorIs(t, err, ErrUnknownStore)
	})
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Config{LogLevel: "WARN"}.NewLogger(&buf)

	log.Info("hidden")
	log.Warn("shown", "count", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "shown", rec["msg"])
	require.Equal(t, "WARN", rec["level"])
}
