package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories agrupa los adaptadores atados al pool, listos para inyectar en los servicios.
type Repositories struct {
	Modules             *ModuleRepo
	OrganizationModules *OrganizationModuleRepo
	Plans               *PlanRepo
	Subscriptions       *SubscriptionRepo
	Organizations       *OrganizationRepo
	Members             *MembershipRepo
	Permissions         *PermissionRepo
	Roles               *RoleRepo
	Tx                  *TxRunner
}

// NewRepositories construye todos los adaptadores sobre el mismo pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Modules:             NewModuleRepository(pool),
		OrganizationModules: NewOrganizationModuleRepository(pool),
		Plans:               NewPlanRepository(pool),
		Subscriptions:       NewSubscriptionRepository(pool),
		Organizations:       NewOrganizationRepository(pool),
		Members:             NewMembershipRepository(pool),
		Permissions:         NewPermissionRepository(pool),
		Roles:               NewRoleRepository(pool),
		Tx:                  NewTxRunner(pool),
	}
}
