package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Modulos-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "free", cfg.Entitlement.DefaultPlan)
	assert.Equal(t, time.Minute, cfg.Entitlement.CacheTTL())
	assert.Equal(t, "0 3 * * *", cfg.Reconcile.Cron)
	assert.Equal(t, 4, cfg.Reconcile.Concurrency)
	assert.Equal(t, "postgres", cfg.App.StoreDriver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 5, cfg.DB.LockTimeout)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("ENTITLEMENT_DEFAULT_PLAN", "basic")
	t.Setenv("RECONCILE_CONCURRENCY", "8")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("DB_MAX_CONNS", "50")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "basic", cfg.Entitlement.DefaultPlan)
	assert.Equal(t, 8, cfg.Reconcile.Concurrency)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.DB.Migrate)
	assert.Equal(t, 50, cfg.DB.MaxConns)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "modulos", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/modulos?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
