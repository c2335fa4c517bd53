package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
)

var (
	_ repository.PermissionRepository = (*PermissionRepo)(nil)
	_ repository.RoleRepository       = (*RoleRepo)(nil)
)

// PermissionRepo permisos granulares y su asignación a roles.
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador.
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// ListRolePermissionCodes códigos permitidos para el rol.
func (r *PermissionRepo) ListRolePermissionCodes(ctx context.Context, roleID string) ([]string, error) {
	if !validID(roleID) {
		return nil, nil
	}
	const query = `
		SELECT p.code
		  FROM role_permissions rp
		  JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = $1 AND rp.allowed
		 ORDER BY p.code`
	codes, err := collectIDs(ctx, r.q, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	return codes, nil
}

// ListPermissionsByModule permisos del catálogo que pertenecen al módulo.
func (r *PermissionRepo) ListPermissionsByModule(ctx context.Context, moduleCode string) ([]*entity.Permission, error) {
	rows, err := r.q.Query(ctx, `SELECT id, code, module, name FROM permissions WHERE module = $1 ORDER BY code`, moduleCode)
	if err != nil {
		return nil, fmt.Errorf("list module permissions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Code, &p.Module, &p.Name); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// FindPermissionByCode obtiene un permiso por código.
func (r *PermissionRepo) FindPermissionByCode(ctx context.Context, code string) (*entity.Permission, error) {
	var p entity.Permission
	err := r.q.QueryRow(ctx, `SELECT id, code, module, name FROM permissions WHERE code = $1`, code).Scan(
		&p.ID, &p.Code, &p.Module, &p.Name,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return &p, nil
}

// SetRolePermission concede el permiso o, con allowed=false, borra la fila.
func (r *PermissionRepo) SetRolePermission(ctx context.Context, roleID, permissionID string, allowed bool) error {
	if !allowed {
		_, err := r.q.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
		if err != nil {
			return fmt.Errorf("delete role permission: %w", err)
		}
		return nil
	}
	const query = `
		INSERT INTO role_permissions (role_id, permission_id, allowed)
		VALUES ($1, $2, true)
		ON CONFLICT (role_id, permission_id) DO UPDATE SET allowed = true`
	if _, err := r.q.Exec(ctx, query, roleID, permissionID); err != nil {
		return fmt.Errorf("upsert role permission: %w", err)
	}
	return nil
}

// RoleRepo lectura de roles.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// FindRole obtiene un rol por ID.
func (r *RoleRepo) FindRole(ctx context.Context, id string) (*entity.Role, error) {
	if !validID(id) {
		return nil, nil
	}
	const query = `SELECT id, name, is_system, organization_id, created_at, updated_at FROM roles WHERE id = $1`
	var role entity.Role
	err := r.q.QueryRow(ctx, query, id).Scan(
		&role.ID, &role.Name, &role.IsSystem, &role.OrganizationID, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}
