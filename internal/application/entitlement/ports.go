package entitlement

import (
	"context"

	"github.com/jhoicas/Modulos-api/internal/domain/repository"
)

// TxRunner ejecuta fn serializado por organización, con repositorios atados a la misma transacción.
// Cierra la carrera leer-verificar-escribir de la activación: dos Activate concurrentes
// sobre la misma organización nunca leen el mismo conteo de módulos de pago.
type TxRunner interface {
	RunLocked(ctx context.Context, organizationID string, fn func(
		planRepo repository.PlanRepository,
		orgModuleRepo repository.OrganizationModuleRepository,
	) error) error
}

// PermissionBootstrapper se invoca cada vez que se materializa la fila de un módulo core.
// Punto de extensión (p. ej. asegurar permisos base del módulo para los roles de la organización).
type PermissionBootstrapper interface {
	BootstrapModulePermissions(ctx context.Context, organizationID, moduleCode string) error
}

// NopBootstrapper no hace nada.
type NopBootstrapper struct{}

// BootstrapModulePermissions implementa PermissionBootstrapper.
func (NopBootstrapper) BootstrapModulePermissions(context.Context, string, string) error { return nil }
