package memory_test

import (
	"context"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/infrastructure/memory"
)

// borrowed devuelve un string que comparte memoria con buf, como los Params de Fiber
// sin Immutable.
func borrowed(buf []byte) string {
	return unsafe.String(&buf[0], len(buf))
}

func overwrite(buf []byte) {
	for i := range buf {
		buf[i] = 'x'
	}
}

func TestStore_UpsertConservaClavesAunqueElLlamadorReuseSuBuffer(t *testing.T) {
	st := memory.New()
	st.AddModule(entity.Module{Code: "inventory", Name: "Inventario", Rank: 10, IsActive: true})
	st.AddModule(entity.Module{Code: "pos", Name: "Punto de venta", Rank: 11, IsActive: true})
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	orgBuf, codeBuf := []byte("org-1"), []byte("inventory")
	require.NoError(t, st.UpsertOrganizationModule(ctx, borrowed(orgBuf), borrowed(codeBuf), true, now))
	overwrite(orgBuf)
	overwrite(codeBuf)

	orgBuf, codeBuf = []byte("org-1"), []byte("pos")
	require.NoError(t, st.UpsertOrganizationModule(ctx, borrowed(orgBuf), borrowed(codeBuf), true, now.Add(time.Hour)))
	overwrite(orgBuf)
	overwrite(codeBuf)

	rows, err := st.ListActiveOrganizationModules(ctx, "org-1", false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "pos", rows[0].ModuleCode)
	assert.Equal(t, "inventory", rows[1].ModuleCode)
	assert.Equal(t, "org-1", rows[1].OrganizationID)
}

func TestStore_SuscripcionConservaOrganizacion(t *testing.T) {
	st := memory.New()
	st.AddOrganization(entity.Organization{ID: "org-1", Name: "Demo", Status: "active"})
	plan := st.AddPlan(entity.Plan{Code: "free", Name: "Gratis", MaxModules: 1, IsActive: true})
	ctx := context.Background()

	orgBuf := []byte("org-1")
	require.NoError(t, st.Create(ctx, &entity.Subscription{
		OrganizationID: borrowed(orgBuf), PlanID: plan.ID, Status: entity.SubscriptionActive,
	}))
	overwrite(orgBuf)

	missing, err := st.ListOrganizationsWithoutSubscription(ctx)
	require.NoError(t, err)
	assert.Empty(t, missing)

	current, err := st.GetCurrentPlan(ctx, "org-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "free", current.Code)
}
