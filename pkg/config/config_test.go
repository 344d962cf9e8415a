package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, FulfillmentTransactional, cfg.Fulfillment.Mode)
	assert.False(t, cfg.Fulfillment.StrictItemTypes)
	assert.Equal(t, 4, cfg.Fulfillment.Parallelism)
	assert.Equal(t, "EGP", cfg.Billing.DefaultCurrency)
	assert.Equal(t, 15*time.Second, cfg.Billing.PaymentLockTTL)
	assert.Equal(t, "0 * * * *", cfg.Worker.OverdueSweepCron)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 15*time.Second, cfg.DB.StatementTimeout)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FULFILLMENT_MODE", "BEST_EFFORT")
	t.Setenv("FULFILLMENT_STRICT_ITEM_TYPES", "true")
	t.Setenv("DEFAULT_CURRENCY", "usd")
	t.Setenv("PAYMENT_LOCK_TTL_SECONDS", "30")
	t.Setenv("DB_MAX_CONNS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, FulfillmentBestEffort, cfg.Fulfillment.Mode)
	assert.True(t, cfg.Fulfillment.StrictItemTypes)
	assert.Equal(t, "USD", cfg.Billing.DefaultCurrency)
	assert.Equal(t, 30*time.Second, cfg.Billing.PaymentLockTTL)
	assert.EqualValues(t, 7, cfg.DB.MaxConns)
}

func TestLoad_ModoInvalido(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FULFILLMENT_MODE", "eventual")
	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "elhamd", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/elhamd?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
