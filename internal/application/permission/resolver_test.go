package permission_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/application/permission"
	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
	"github.com/jhoicas/Modulos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	orgID       = "org-1"
	otherOrgID  = "org-2"
	cashierRole = "role-cajero"
	adminRole   = "role-admin-sistema"
)

type fixture struct {
	st       *memory.Store
	svc      *entitlement.Service
	resolver *permission.Resolver
	perms    map[string]*entity.Permission
}

// newFixture arma una organización con plan de un módulo de pago, "inventory" activo,
// y tres usuarios: un cajero, un super-admin sin permisos y un miembro inactivo.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	st.AddModule(entity.Module{Code: "dashboard", Name: "Tablero", IsCore: true, Rank: 1, IsActive: true})
	st.AddModule(entity.Module{Code: "inventory", Name: "Inventario", Rank: 2, IsActive: true})
	st.AddModule(entity.Module{Code: "pos", Name: "Punto de venta", Rank: 3, IsActive: true})
	st.AddModule(entity.Module{Code: "reports", Name: "Reportes", Rank: 4, IsActive: true})

	plan := st.AddPlan(entity.Plan{Code: "pro", Name: "Pro", MaxModules: 3, IsActive: true})
	st.AddOrganization(entity.Organization{ID: orgID, Name: "Ferretería Central", Status: "active"})
	require.NoError(t, st.Create(context.Background(), &entity.Subscription{
		OrganizationID: orgID, PlanID: plan.ID, Status: entity.SubscriptionActive,
	}))

	perms := map[string]*entity.Permission{}
	for _, p := range []entity.Permission{
		{Code: "dashboard.view", Module: "dashboard"},
		{Code: "inventory.view", Module: "inventory"},
		{Code: "inventory.adjust", Module: "inventory"},
		{Code: "pos.sell", Module: "pos"},
	} {
		perms[p.Code] = st.AddPermission(p)
	}

	org := orgID
	st.AddRole(entity.Role{ID: cashierRole, Name: "Cajero", OrganizationID: &org})
	st.AddRole(entity.Role{ID: adminRole, Name: "Administrador", IsSystem: true})

	st.AddMember(entity.OrganizationMember{UserID: "u-cajero", OrganizationID: orgID, RoleID: cashierRole, IsActive: true})
	st.AddMember(entity.OrganizationMember{UserID: "u-root", OrganizationID: orgID, RoleID: adminRole, IsSuperAdmin: true, IsActive: true})
	st.AddMember(entity.OrganizationMember{UserID: "u-baja", OrganizationID: orgID, RoleID: cashierRole, IsActive: false})

	ctx := context.Background()
	require.NoError(t, st.SetRolePermission(ctx, cashierRole, perms["inventory.view"].ID, true))
	require.NoError(t, st.SetRolePermission(ctx, cashierRole, perms["pos.sell"].ID, true))

	svc := entitlement.NewService(entitlement.Deps{
		Catalog:    entitlement.NewModuleCatalog(st, time.Minute),
		Plans:      entitlement.NewPlanResolver(st),
		OrgModules: st,
		Tx:         st,
	})
	require.True(t, svc.Activate(ctx, orgID, "inventory").Success)

	return &fixture{
		st:  st,
		svc: svc,
		resolver: permission.NewResolver(permission.Deps{
			Members:      st,
			Permissions:  st,
			Roles:        st,
			Entitlements: svc,
		}),
		perms: perms,
	}
}

type failingMembers struct{}

func (failingMembers) FindActiveMembership(context.Context, string, string) (*entity.Membership, error) {
	return nil, errors.New("connection refused")
}

var _ repository.MembershipRepository = failingMembers{}

// ──────────────────────────────────────────────────────────────────────────────
// CheckPermission
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckPermission_RolConPermiso(t *testing.T) {
	f := newFixture(t)

	check, err := f.resolver.CheckPermission(context.Background(), "u-cajero", orgID, "inventory.view")
	require.NoError(t, err)
	assert.True(t, check.HasPermission)
	assert.False(t, check.IsSuperAdmin)
	assert.Equal(t, cashierRole, check.RoleID)
	assert.Equal(t, "Cajero", check.RoleName)
}

func TestCheckPermission_RolSinPermiso(t *testing.T) {
	f := newFixture(t)

	check, err := f.resolver.CheckPermission(context.Background(), "u-cajero", orgID, "inventory.adjust")
	require.NoError(t, err)
	assert.False(t, check.HasPermission)
}

func TestCheckPermission_NormalizaCodigo(t *testing.T) {
	f := newFixture(t)

	check, err := f.resolver.CheckPermission(context.Background(), "u-cajero", orgID, "  Inventory.VIEW ")
	require.NoError(t, err)
	assert.True(t, check.HasPermission)
}

func TestCheckPermission_CodigosAlmacenadosSinNormalizar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	legacy := f.st.AddPermission(entity.Permission{Code: "Inventory.Export", Module: "inventory"})
	require.NoError(t, f.st.SetRolePermission(ctx, cashierRole, legacy.ID, true))

	check, err := f.resolver.CheckPermission(ctx, "u-cajero", orgID, "inventory.export")
	require.NoError(t, err)
	assert.True(t, check.HasPermission)

	got, err := f.resolver.CheckMultiplePermissions(ctx, "u-cajero", orgID, []string{"inventory.export"})
	require.NoError(t, err)
	assert.True(t, got["inventory.export"])
}

func TestCheckPermission_SuperAdminSinFilasDePermiso(t *testing.T) {
	f := newFixture(t)

	check, err := f.resolver.CheckPermission(context.Background(), "u-root", orgID, "inventory.adjust")
	require.NoError(t, err)
	assert.True(t, check.HasPermission)
	assert.True(t, check.IsSuperAdmin)
}

func TestCheckPermission_SinMembresiaDeniega(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tc := range []struct{ name, user, org string }{
		{"usuario desconocido", "u-nadie", orgID},
		{"miembro inactivo", "u-baja", orgID},
		{"otra organización", "u-cajero", otherOrgID},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check, err := f.resolver.CheckPermission(ctx, tc.user, tc.org, "inventory.view")
			require.NoError(t, err)
			assert.False(t, check.HasPermission)
			assert.Empty(t, check.RoleID)
		})
	}
}

func TestCheckPermission_FalloDeInfraestructuraDeniegaConError(t *testing.T) {
	f := newFixture(t)
	r := permission.NewResolver(permission.Deps{
		Members:      failingMembers{},
		Permissions:  f.st,
		Roles:        f.st,
		Entitlements: f.svc,
	})

	check, err := r.CheckPermission(context.Background(), "u-cajero", orgID, "inventory.view")
	require.Error(t, err)
	assert.False(t, check.HasPermission)
}

// ──────────────────────────────────────────────────────────────────────────────
// CheckMultiplePermissions
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckMultiplePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	codes := []string{"inventory.view", "inventory.adjust", "pos.sell", "no.existe"}

	got, err := f.resolver.CheckMultiplePermissions(ctx, "u-cajero", orgID, codes)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"inventory.view":   true,
		"inventory.adjust": false,
		"pos.sell":         true,
		"no.existe":        false,
	}, got)

	got, err = f.resolver.CheckMultiplePermissions(ctx, "u-root", orgID, codes)
	require.NoError(t, err)
	for _, c := range codes {
		assert.True(t, got[c], c)
	}

	got, err = f.resolver.CheckMultiplePermissions(ctx, "u-nadie", orgID, codes)
	require.NoError(t, err)
	assert.Len(t, got, len(codes))
	for _, c := range codes {
		assert.False(t, got[c], c)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CanAccessModule
// ──────────────────────────────────────────────────────────────────────────────

func TestCanAccessModule_ModuloActivoConAlgunPermiso(t *testing.T) {
	f := newFixture(t)

	ok, err := f.resolver.CanAccessModule(context.Background(), "u-cajero", orgID, "inventory")
	require.NoError(t, err)
	assert.True(t, ok, "basta con uno de los permisos del módulo")
}

func TestCanAccessModule_ModuloNoActivadoBloqueaAunConPermiso(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.resolver.CanAccessModule(ctx, "u-cajero", orgID, "pos")
	require.NoError(t, err)
	assert.False(t, ok, "pos no está activado aunque el rol tiene pos.sell")

	ok, err = f.resolver.CanAccessModule(ctx, "u-root", orgID, "pos")
	require.NoError(t, err)
	assert.False(t, ok, "ni el super-admin entra a un módulo no activado")
}

func TestCanAccessModule_ModuloCoreSinPermisoDelRol(t *testing.T) {
	f := newFixture(t)

	ok, err := f.resolver.CanAccessModule(context.Background(), "u-cajero", orgID, "dashboard")
	require.NoError(t, err)
	assert.False(t, ok, "dashboard tiene permisos y el cajero no tiene ninguno")
}

func TestCanAccessModule_ModuloSinPermisosEsTodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.svc.Activate(ctx, orgID, "reports").Success)

	ok, err := f.resolver.CanAccessModule(ctx, "u-cajero", orgID, "reports")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.resolver.CanAccessModule(ctx, "u-nadie", orgID, "reports")
	require.NoError(t, err)
	assert.True(t, ok, "sin permisos en el catálogo solo cuenta la habilitación")

	ok, err = f.resolver.CanAccessModule(ctx, "u-nadie", orgID, "parking")
	require.NoError(t, err)
	assert.False(t, ok, "la habilitación sigue mandando")
}

func TestCanAccessModule_SinMembresiaEnModuloConPermisos(t *testing.T) {
	f := newFixture(t)

	ok, err := f.resolver.CanAccessModule(context.Background(), "u-nadie", orgID, "inventory")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanAccessModule_SuperAdmin(t *testing.T) {
	f := newFixture(t)

	ok, err := f.resolver.CanAccessModule(context.Background(), "u-root", orgID, "dashboard")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessModule_FalloDeInfraestructura(t *testing.T) {
	f := newFixture(t)
	r := permission.NewResolver(permission.Deps{
		Members:      failingMembers{},
		Permissions:  f.st,
		Roles:        f.st,
		Entitlements: f.svc,
	})

	ok, err := r.CanAccessModule(context.Background(), "u-cajero", orgID, "inventory")
	require.Error(t, err)
	assert.False(t, ok)
}

// ──────────────────────────────────────────────────────────────────────────────
// SetRolePermission
// ──────────────────────────────────────────────────────────────────────────────

func TestSetRolePermission_ConcedeYRetira(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.resolver.SetRolePermission(ctx, orgID, cashierRole, "inventory.adjust", true)
	require.True(t, res.Success, res.Message)
	check, err := f.resolver.CheckPermission(ctx, "u-cajero", orgID, "inventory.adjust")
	require.NoError(t, err)
	assert.True(t, check.HasPermission)

	res = f.resolver.SetRolePermission(ctx, orgID, cashierRole, "inventory.adjust", false)
	require.True(t, res.Success, res.Message)
	check, err = f.resolver.CheckPermission(ctx, "u-cajero", orgID, "inventory.adjust")
	require.NoError(t, err)
	assert.False(t, check.HasPermission)
}

func TestSetRolePermission_Fallos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name, org, role, perm, code string
	}{
		{"rol de sistema", orgID, adminRole, "inventory.view", permission.CodeRoleProtected},
		{"rol inexistente", orgID, "role-x", "inventory.view", permission.CodeRoleNotFound},
		{"rol de otra organización", otherOrgID, cashierRole, "inventory.view", permission.CodeRoleNotFound},
		{"permiso inexistente", orgID, cashierRole, "inventory.delete", permission.CodePermissionNotFound},
		{"entrada vacía", orgID, cashierRole, "  ", entitlement.CodeInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := f.resolver.SetRolePermission(ctx, tc.org, tc.role, tc.perm, true)
			assert.False(t, res.Success)
			assert.Equal(t, tc.code, res.Code)
			assert.NotEmpty(t, res.Message)
		})
	}
}
