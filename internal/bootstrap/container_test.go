package bootstrap_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Modulos-api/internal/bootstrap"
	"github.com/jhoicas/Modulos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Modulos-api/pkg/config"
	"github.com/jhoicas/Modulos-api/pkg/logger"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{StoreDriver: bootstrap.DriverMemory},
		Entitlement: config.EntitlementConfig{DefaultPlan: "free", CacheTTLSeconds: 60, CacheSize: 16},
		Reconcile:   config.ReconcileConfig{Concurrency: 2},
	}
}

func gatheredNames(t *testing.T, c *bootstrap.Container) map[string]bool {
	t.Helper()
	families, err := c.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestBuild_MemoriaConCacheLocal(t *testing.T) {
	ctx := context.Background()
	c, err := bootstrap.Build(ctx, memoryConfig(), logger.Nop())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Ping(ctx))

	st, err := c.Modules.GetStatus(ctx, memory.DemoOrganizationID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.MaxAllowed)
	assert.Equal(t, 0, st.PaidActiveCount)

	res := c.Modules.Activate(ctx, memory.DemoOrganizationID, "inventory")
	require.True(t, res.Success, res.Message)

	ok, err := c.Permissions.CanAccessModule(ctx, memory.DemoCashierUserID, memory.DemoOrganizationID, "inventory")
	require.NoError(t, err)
	assert.True(t, ok)

	report, err := c.Reconciler.Audit(ctx)
	require.NoError(t, err)
	assert.Contains(t, report.OrgsWithoutSubscription, memory.DemoOrphanOrganizationID)

	names := gatheredNames(t, c)
	assert.True(t, names["modulos_module_transitions_total"])
	assert.True(t, names["modulos_permission_checks_total"])
	assert.True(t, names["go_goroutines"])
}

func TestBuild_CacheEnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.Redis.URL = "redis://" + mr.Addr()

	ctx := context.Background()
	c, err := bootstrap.Build(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Modules.ActiveModuleCodes(ctx, memory.DemoOrganizationID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("entitlements:org:"+memory.DemoOrganizationID+":active"))

	mr.Close()
	assert.Error(t, c.Ping(ctx))
}

func TestBuild_TTLCeroDeshabilitaCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.Redis.URL = "redis://" + mr.Addr()
	cfg.Entitlement.CacheTTLSeconds = 0

	ctx := context.Background()
	c, err := bootstrap.Build(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Modules.ActiveModuleCodes(ctx, memory.DemoOrganizationID)
	require.NoError(t, err)
	assert.False(t, mr.Exists("entitlements:org:"+memory.DemoOrganizationID+":active"),
		"con TTL 0 no se guarda nada que luego viva para siempre")
	assert.Empty(t, mr.Keys())
}

func TestBuild_Errores(t *testing.T) {
	ctx := context.Background()

	t.Run("driver desconocido", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.App.StoreDriver = "mongo"
		_, err := bootstrap.Build(ctx, cfg, logger.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mongo")
	})

	t.Run("redis inalcanzable", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Redis.URL = "redis://127.0.0.1:1"
		_, err := bootstrap.Build(ctx, cfg, logger.Nop())
		assert.Error(t, err)
	})
}

func TestClose_Idempotente(t *testing.T) {
	c, err := bootstrap.Build(context.Background(), memoryConfig(), logger.Nop())
	require.NoError(t, err)
	c.Close()
	c.Close()
}
