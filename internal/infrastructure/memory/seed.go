package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
)

// Datos de demostración para STORE_DRIVER=memory.
const (
	DemoOrganizationID       = "7c1e4b7a-2f4d-4b53-9a3e-0d7f6c1a9b01"
	DemoOrphanOrganizationID = "7c1e4b7a-2f4d-4b53-9a3e-0d7f6c1a9b02"

	DemoAdminUserID   = "3a9f0c52-8d1b-4e6f-a2c7-5b4e9d0f1a01"
	DemoManagerUserID = "3a9f0c52-8d1b-4e6f-a2c7-5b4e9d0f1a02"
	DemoCashierUserID = "3a9f0c52-8d1b-4e6f-a2c7-5b4e9d0f1a03"

	DemoAdminRoleID   = "e5d2b8c1-6a4f-4f1e-8b3d-9c7a2e1f0d01"
	DemoManagerRoleID = "e5d2b8c1-6a4f-4f1e-8b3d-9c7a2e1f0d02"
	DemoCashierRoleID = "e5d2b8c1-6a4f-4f1e-8b3d-9c7a2e1f0d03"
)

// Seed carga un catálogo, planes y una organización de demostración con plan "basic"
// (dos módulos de pago), un super-admin, un gerente y un cajero. Incluye una segunda
// organización sin suscripción para que la conciliación tenga algo que reparar.
func Seed(s *Store, now time.Time) {
	for _, m := range []entity.Module{
		{Code: "dashboard", Name: "Tablero", IsCore: true, Rank: 1, IsActive: true},
		{Code: "customers", Name: "Clientes", IsCore: true, Rank: 2, IsActive: true},
		{Code: "settings", Name: "Configuración", IsCore: true, Rank: 3, IsActive: true},
		{Code: "inventory", Name: "Inventario", Rank: 10, IsActive: true},
		{Code: "pos", Name: "Punto de venta", Rank: 11, IsActive: true},
		{Code: "parking", Name: "Parqueadero", Rank: 12, IsActive: true},
		{Code: "reports", Name: "Reportes", Rank: 13, IsActive: true},
	} {
		m.CreatedAt, m.UpdatedAt = now, now
		s.AddModule(m)
	}

	s.AddPlan(entity.Plan{Code: entity.PlanCodeFree, Name: "Gratis", MaxModules: 1, MaxBranches: 1, IsActive: true})
	basic := s.AddPlan(entity.Plan{
		Code: "basic", Name: "Básico", MaxModules: 2, MaxBranches: 2, TrialDays: 15, IsActive: true,
		PriceMonthly: decimal.NewFromInt(89000), PriceYearly: decimal.NewFromInt(890000),
	})
	s.AddPlan(entity.Plan{
		Code: "pro", Name: "Profesional", MaxModules: 4, MaxBranches: 10, IsActive: true,
		PriceMonthly: decimal.NewFromInt(189000), PriceYearly: decimal.NewFromInt(1890000),
		Features: map[string]any{"soporte_prioritario": true},
	})

	s.AddOrganization(entity.Organization{ID: DemoOrganizationID, Name: "Comercial Demo S.A.S.", Status: "active", CreatedAt: now, UpdatedAt: now})
	s.AddOrganization(entity.Organization{ID: DemoOrphanOrganizationID, Name: "Organización sin plan", Status: "active", CreatedAt: now, UpdatedAt: now})
	_ = s.Create(context.Background(), &entity.Subscription{
		OrganizationID: DemoOrganizationID,
		PlanID:         basic.ID,
		Status:         entity.SubscriptionActive,
		StartedAt:      now,
	})
	for _, code := range []string{"dashboard", "customers", "settings"} {
		_ = s.UpsertOrganizationModule(context.Background(), DemoOrganizationID, code, true, now)
	}

	perms := map[string]string{}
	for _, p := range []entity.Permission{
		{Code: "dashboard.view", Module: "dashboard", Name: "Ver tablero"},
		{Code: "customers.view", Module: "customers", Name: "Ver clientes"},
		{Code: "customers.edit", Module: "customers", Name: "Editar clientes"},
		{Code: "modules.manage", Module: "settings", Name: "Administrar módulos"},
		{Code: "roles.manage", Module: "settings", Name: "Administrar roles"},
		{Code: "inventory.view", Module: "inventory", Name: "Ver inventario"},
		{Code: "inventory.adjust", Module: "inventory", Name: "Ajustar inventario"},
		{Code: "pos.sell", Module: "pos", Name: "Vender"},
		{Code: "parking.checkin", Module: "parking", Name: "Registrar ingreso"},
	} {
		perms[p.Code] = s.AddPermission(p).ID
	}

	org := DemoOrganizationID
	s.AddRole(entity.Role{ID: DemoAdminRoleID, Name: "Administrador", IsSystem: true, CreatedAt: now, UpdatedAt: now})
	s.AddRole(entity.Role{ID: DemoManagerRoleID, Name: "Gerente", OrganizationID: &org, CreatedAt: now, UpdatedAt: now})
	s.AddRole(entity.Role{ID: DemoCashierRoleID, Name: "Cajero", OrganizationID: &org, CreatedAt: now, UpdatedAt: now})

	grant := func(roleID string, codes ...string) {
		for _, c := range codes {
			_ = s.SetRolePermission(context.Background(), roleID, perms[c], true)
		}
	}
	grant(DemoCashierRoleID, "dashboard.view", "customers.view", "inventory.view", "pos.sell")
	grant(DemoManagerRoleID, "dashboard.view", "customers.view", "customers.edit",
		"modules.manage", "roles.manage", "inventory.view", "inventory.adjust", "pos.sell")

	s.AddMember(entity.OrganizationMember{UserID: DemoAdminUserID, OrganizationID: DemoOrganizationID, RoleID: DemoAdminRoleID, IsSuperAdmin: true, IsActive: true})
	s.AddMember(entity.OrganizationMember{UserID: DemoManagerUserID, OrganizationID: DemoOrganizationID, RoleID: DemoManagerRoleID, IsActive: true})
	s.AddMember(entity.OrganizationMember{UserID: DemoCashierUserID, OrganizationID: DemoOrganizationID, RoleID: DemoCashierRoleID, IsActive: true})
}
