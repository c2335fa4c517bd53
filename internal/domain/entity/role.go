package entity

import "time"

// Role agrupa permisos. Los roles de sistema los define la plataforma y son inmutables;
// los demás pertenecen a una organización.
type Role struct {
	ID             string
	Name           string
	IsSystem       bool
	OrganizationID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BelongsTo informa si el rol puede usarse dentro de la organización.
func (r *Role) BelongsTo(organizationID string) bool {
	return r.OrganizationID == nil || *r.OrganizationID == organizationID
}

// Permission es un permiso granular dentro de un módulo.
type Permission struct {
	ID     string
	Code   string
	Module string // Module.Code
	Name   string
}

// RolePermission asigna un permiso a un rol. La ausencia de fila equivale a denegado.
type RolePermission struct {
	RoleID       string
	PermissionID string
	Allowed      bool
}
