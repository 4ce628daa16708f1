package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/device-rental-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Ledger.TxTimeout)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoad_LedgerOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LEDGER_TX_TIMEOUT", "750ms")
	t.Setenv("LEDGER_LOCK_TIMEOUT", "200")
	t.Setenv("LEDGER_MAX_RETRIES", "1")
	t.Setenv("LOGIN_RATE_RPS", "0.5")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Ledger.TxTimeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Ledger.LockTimeout)
	assert.Equal(t, 1, cfg.Ledger.MaxRetries)
	assert.InDelta(t, 0.5, cfg.RateLimit.LoginRPS, 0.0001)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN_EscapesPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "rental", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/rental?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
