package permission

import (
	"context"
	"fmt"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
	"github.com/jhoicas/Modulos-api/pkg/logger"
	"github.com/jhoicas/Modulos-api/pkg/metrics"
)

// entitlementChecker es el contrato mínimo que necesita el resolvedor del motor de módulos.
// Lo implementa *entitlement.Service.
type entitlementChecker interface {
	IsModuleActive(ctx context.Context, organizationID, moduleCode string) (bool, error)
}

// Check resultado de un chequeo de permiso.
type Check struct {
	HasPermission bool   `json:"has_permission"`
	IsSuperAdmin  bool   `json:"is_super_admin"`
	RoleID        string `json:"role_id,omitempty"`
	RoleName      string `json:"role_name,omitempty"`
}

// Deps dependencias del resolvedor.
type Deps struct {
	Members      repository.MembershipRepository
	Permissions  repository.PermissionRepository
	Roles        repository.RoleRepository
	Entitlements entitlementChecker
	Metrics      *metrics.Metrics
	Logger       *logger.Logger
}

// Resolver responde "¿puede el usuario U ejecutar el permiso P en la organización O?".
// Los permisos son por rol: un rol por miembro y organización.
type Resolver struct {
	members      repository.MembershipRepository
	permissions  repository.PermissionRepository
	roles        repository.RoleRepository
	entitlements entitlementChecker
	metrics      *metrics.Metrics
	log          *logger.Logger
}

// NewResolver construye el resolvedor de permisos.
func NewResolver(d Deps) *Resolver {
	r := &Resolver{
		members:      d.Members,
		permissions:  d.Permissions,
		roles:        d.Roles,
		entitlements: d.Entitlements,
		metrics:      d.Metrics,
		log:          d.Logger,
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	return r
}

// CheckPermission resuelve un permiso. Sin membresía activa se deniega (no es un error).
// El super-admin recibe el permiso sin consultar el rol.
// Ante error de infraestructura devuelve un Check denegado junto con el error.
func (r *Resolver) CheckPermission(ctx context.Context, userID, organizationID, permissionCode string) (Check, error) {
	const kind = "permission"
	code := entity.NormalizeCode(permissionCode)
	m, err := r.members.FindActiveMembership(ctx, userID, organizationID)
	if err != nil {
		return r.fail(kind, userID, organizationID, fmt.Errorf("find membership: %w", err))
	}
	if m == nil {
		r.metrics.PermissionCheck(kind, "denied")
		return Check{}, nil
	}
	check := Check{IsSuperAdmin: m.IsSuperAdmin, RoleID: m.RoleID, RoleName: m.RoleName}
	if m.IsSuperAdmin {
		check.HasPermission = true
		r.metrics.PermissionCheck(kind, "granted")
		return check, nil
	}
	codes, err := r.permissions.ListRolePermissionCodes(ctx, m.RoleID)
	if err != nil {
		return r.fail(kind, userID, organizationID, fmt.Errorf("list role permissions: %w", err))
	}
	check.HasPermission = toSet(codes)[code]
	r.metrics.PermissionCheck(kind, grantLabel(check.HasPermission))
	return check, nil
}

// CheckMultiplePermissions variante por lotes de CheckPermission: el rol se consulta una sola vez.
func (r *Resolver) CheckMultiplePermissions(ctx context.Context, userID, organizationID string, permissionCodes []string) (map[string]bool, error) {
	out := make(map[string]bool, len(permissionCodes))
	for _, c := range permissionCodes {
		out[c] = false
	}
	m, err := r.members.FindActiveMembership(ctx, userID, organizationID)
	if err != nil {
		_, err = r.fail("batch", userID, organizationID, fmt.Errorf("find membership: %w", err))
		return out, err
	}
	if m == nil {
		return out, nil
	}
	if m.IsSuperAdmin {
		for c := range out {
			out[c] = true
		}
		return out, nil
	}
	codes, err := r.permissions.ListRolePermissionCodes(ctx, m.RoleID)
	if err != nil {
		_, err = r.fail("batch", userID, organizationID, fmt.Errorf("list role permissions: %w", err))
		return out, err
	}
	granted := toSet(codes)
	for c := range out {
		out[c] = granted[entity.NormalizeCode(c)]
	}
	return out, nil
}

// CanAccessModule informa si el usuario puede entrar al módulo:
//  1. el módulo debe estar activo para la organización (un módulo de pago no activado
//     bloquea incluso a quien tenga el permiso);
//  2. un módulo sin permisos en el catálogo es todo-o-nada: basta con el paso 1;
//  3. si no, el usuario debe tener membresía activa; el super-admin pasa directamente;
//  4. y basta con un permiso cualquiera del módulo (semántica OR).
func (r *Resolver) CanAccessModule(ctx context.Context, userID, organizationID, moduleCode string) (bool, error) {
	const kind = "module"
	code := entity.NormalizeCode(moduleCode)
	active, err := r.entitlements.IsModuleActive(ctx, organizationID, code)
	if err != nil {
		_, err = r.fail(kind, userID, organizationID, fmt.Errorf("module entitlement: %w", err))
		return false, err
	}
	if !active {
		r.metrics.PermissionCheck(kind, "denied")
		return false, nil
	}
	perms, err := r.permissions.ListPermissionsByModule(ctx, code)
	if err != nil {
		_, err = r.fail(kind, userID, organizationID, fmt.Errorf("list module permissions: %w", err))
		return false, err
	}
	if len(perms) == 0 {
		r.metrics.PermissionCheck(kind, "granted")
		return true, nil
	}
	m, err := r.members.FindActiveMembership(ctx, userID, organizationID)
	if err != nil {
		_, err = r.fail(kind, userID, organizationID, fmt.Errorf("find membership: %w", err))
		return false, err
	}
	if m == nil {
		r.metrics.PermissionCheck(kind, "denied")
		return false, nil
	}
	if m.IsSuperAdmin {
		r.metrics.PermissionCheck(kind, "granted")
		return true, nil
	}
	codes, err := r.permissions.ListRolePermissionCodes(ctx, m.RoleID)
	if err != nil {
		_, err = r.fail(kind, userID, organizationID, fmt.Errorf("list role permissions: %w", err))
		return false, err
	}
	granted := toSet(codes)
	for _, p := range perms {
		if granted[entity.NormalizeCode(p.Code)] {
			r.metrics.PermissionCheck(kind, "granted")
			return true, nil
		}
	}
	r.metrics.PermissionCheck(kind, "denied")
	return false, nil
}

func (r *Resolver) fail(kind, userID, organizationID string, err error) (Check, error) {
	r.metrics.PermissionCheck(kind, "error")
	r.log.Error().Err(err).
		Str("kind", kind).
		Str("user_id", userID).
		Str("organization_id", organizationID).
		Msg("fallo de infraestructura resolviendo permisos")
	return Check{}, err
}

func grantLabel(ok bool) string {
	if ok {
		return "granted"
	}
	return "denied"
}

// toSet indexa códigos ya normalizados.
func toSet(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[entity.NormalizeCode(c)] = true
	}
	return set
}
