package repository

import (
	"context"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
)

// PermissionRepository puerto de persistencia de permisos y su asignación a roles.
type PermissionRepository interface {
	// ListRolePermissionCodes devuelve los códigos con allowed = true para el rol.
	ListRolePermissionCodes(ctx context.Context, roleID string) ([]string, error)
	ListPermissionsByModule(ctx context.Context, moduleCode string) ([]*entity.Permission, error)
	// FindPermissionByCode devuelve (nil, nil) si el código no existe.
	FindPermissionByCode(ctx context.Context, code string) (*entity.Permission, error)
	// SetRolePermission concede (allowed=true) o retira (borra la fila) un permiso del rol.
	SetRolePermission(ctx context.Context, roleID, permissionID string, allowed bool) error
}

// RoleRepository puerto de lectura de roles.
type RoleRepository interface {
	// FindRole devuelve (nil, nil) si el rol no existe.
	FindRole(ctx context.Context, id string) (*entity.Role, error)
}
