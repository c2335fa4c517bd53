package permission

import (
	"context"
	"fmt"

	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/domain/entity"
)

// Códigos de fallo de la administración de permisos.
const (
	CodeRoleNotFound       = "ROLE_NOT_FOUND"
	CodeRoleProtected      = "ROLE_PROTECTED"
	CodePermissionNotFound = "PERMISSION_NOT_FOUND"
)

// SetRolePermission concede o retira un permiso a un rol de la organización.
// Los roles de sistema son inmutables; retirar borra la fila (ausencia = denegado).
func (r *Resolver) SetRolePermission(ctx context.Context, organizationID, roleID, permissionCode string, allowed bool) entitlement.Result {
	code := entity.NormalizeCode(permissionCode)
	if organizationID == "" || roleID == "" || code == "" {
		return entitlement.Fail(entitlement.CodeInvalidInput, "organizationID, roleID y código de permiso son obligatorios")
	}
	role, err := r.roles.FindRole(ctx, roleID)
	if err != nil {
		return r.adminInternal(organizationID, roleID, fmt.Errorf("find role: %w", err))
	}
	if role == nil || !role.BelongsTo(organizationID) {
		return entitlement.Fail(CodeRoleNotFound, "el rol no existe en esta organización")
	}
	if role.IsSystem {
		return entitlement.Fail(CodeRoleProtected, fmt.Sprintf("el rol de sistema '%s' no se puede modificar", role.Name))
	}
	perm, err := r.permissions.FindPermissionByCode(ctx, code)
	if err != nil {
		return r.adminInternal(organizationID, roleID, fmt.Errorf("find permission: %w", err))
	}
	if perm == nil {
		return entitlement.Fail(CodePermissionNotFound, fmt.Sprintf("el permiso '%s' no existe", code))
	}
	if err := r.permissions.SetRolePermission(ctx, role.ID, perm.ID, allowed); err != nil {
		return r.adminInternal(organizationID, roleID, fmt.Errorf("set role permission: %w", err))
	}
	r.log.Info().
		Str("organization_id", organizationID).
		Str("role_id", roleID).
		Str("permission", code).
		Bool("allowed", allowed).
		Msg("permiso de rol actualizado")
	if allowed {
		return entitlement.OK(fmt.Sprintf("permiso '%s' concedido al rol '%s'", code, role.Name))
	}
	return entitlement.OK(fmt.Sprintf("permiso '%s' retirado del rol '%s'", code, role.Name))
}

func (r *Resolver) adminInternal(organizationID, roleID string, err error) entitlement.Result {
	r.log.Error().Err(err).
		Str("organization_id", organizationID).
		Str("role_id", roleID).
		Msg("fallo de infraestructura administrando permisos")
	return entitlement.Fail(entitlement.CodeInternal, "no se pudo completar la operación, intente más tarde")
}
