package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
)

// ModuleRepository puerto de lectura del catálogo de módulos.
type ModuleRepository interface {
	// FindModule devuelve (nil, nil) si el código no existe.
	FindModule(ctx context.Context, code string) (*entity.Module, error)
	// ListModules devuelve los módulos de la partición ordenados por rank.
	ListModules(ctx context.Context, filter entity.ModuleFilter) ([]*entity.Module, error)
}

// OrganizationModuleRepository puerto de persistencia de las activaciones por organización.
type OrganizationModuleRepository interface {
	// UpsertOrganizationModule crea o actualiza la fila (organization_id, module_code).
	// Activar fija enabled_at (si la fila no estaba activa) y limpia disabled_at;
	// desactivar fija disabled_at. Las filas nunca se borran.
	UpsertOrganizationModule(ctx context.Context, organizationID, moduleCode string, active bool, at time.Time) error
	// FindOrganizationModule devuelve (nil, nil) si la organización nunca tocó el módulo.
	FindOrganizationModule(ctx context.Context, organizationID, moduleCode string) (*entity.OrganizationModule, error)
	// ListActiveOrganizationModules lista las filas activas de módulos core (core=true)
	// o de pago (core=false), ordenadas por enabled_at descendente.
	ListActiveOrganizationModules(ctx context.Context, organizationID string, core bool) ([]*entity.OrganizationModule, error)
}
