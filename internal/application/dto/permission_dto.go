package dto

// PermissionCheckResponse respuesta de GET /api/permissions/check.
type PermissionCheckResponse struct {
	Code          string `json:"code"`
	HasPermission bool   `json:"has_permission"`
	IsSuperAdmin  bool   `json:"is_super_admin"`
	RoleID        string `json:"role_id,omitempty"`
	RoleName      string `json:"role_name,omitempty"`
}

// CheckPermissionsRequest entrada de POST /api/permissions/check.
type CheckPermissionsRequest struct {
	Codes []string `json:"codes" validate:"required,min=1,max=100"`
}

// CheckPermissionsResponse código de permiso -> concedido.
type CheckPermissionsResponse struct {
	Permissions map[string]bool `json:"permissions"`
}

// SetRolePermissionRequest entrada de PUT /api/roles/:roleId/permissions/:code.
type SetRolePermissionRequest struct {
	Allowed bool `json:"allowed"`
}
