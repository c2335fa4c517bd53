package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Modulos-api/internal/bootstrap"
	"github.com/jhoicas/Modulos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Modulos-api/pkg/config"
	"github.com/jhoicas/Modulos-api/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{StoreDriver: bootstrap.DriverMemory},
		Entitlement: config.EntitlementConfig{DefaultPlan: "free", CacheTTLSeconds: 60, CacheSize: 16},
		Reconcile:   config.ReconcileConfig{Concurrency: 2},
	}
}

func runCLI(t *testing.T, args ...string) (int, map[string]any) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), testConfig(), logger.Nop(), args, &stdout, &stderr)
	if stdout.Len() == 0 {
		return code, nil
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out), stdout.String())
	return code, out
}

func TestRun_Auditoria(t *testing.T) {
	code, out := runCLI(t)
	require.Equal(t, 0, code)
	assert.Equal(t, []any{memory.DemoOrphanOrganizationID}, out["orgs_without_subscription"])
}

func TestRun_RepararTodo(t *testing.T) {
	code, out := runCLI(t, "-fix")
	require.Equal(t, 0, code)
	assert.EqualValues(t, 1, out["repaired"])
	assert.EqualValues(t, 0, out["failed"])
}

func TestRun_RepararUnaOrganizacion(t *testing.T) {
	code, out := runCLI(t, "-org", memory.DemoOrphanOrganizationID)
	require.Equal(t, 0, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "free", out["assigned_plan"])
}

func TestRun_FlagDesconocido(t *testing.T) {
	code, out := runCLI(t, "-dry")
	assert.Equal(t, 2, code)
	assert.Nil(t, out)
}
