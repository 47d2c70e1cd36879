package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 15*time.Minute, cfg.Redis.CacheTTL)
	assert.False(t, cfg.JWT.AuthEnabled)
	assert.Equal(t, "low", cfg.Audit.Queue)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/shelf.db")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("DB_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/shelf.db", cfg.Store.SQLitePath)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Run("unknown store driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STORE_DRIVER")
	})

	t.Run("default secret in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("AUTH_ENABLED", "true")
		t.Setenv("DB_PASSWORD", "set")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	db, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, 6543, db.Port)
	assert.Equal(t, 250*time.Millisecond, db.RetryDelay)

	t.Setenv("DB_PORT", "nope")
	_, err = LoadDatabaseConfig()
	assert.Error(t, err)
}
