package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Modulos-api/internal/application/dto"
	"github.com/jhoicas/Modulos-api/internal/application/permission"
)

const maxBatchPermissions = 100

// PermissionHandler chequeos de permisos del usuario del token y administración de roles.
type PermissionHandler struct {
	resolver *permission.Resolver
}

// NewPermissionHandler construye el handler.
func NewPermissionHandler(resolver *permission.Resolver) *PermissionHandler {
	return &PermissionHandler{resolver: resolver}
}

// Check godoc
// @Summary      Verificar un permiso
// @Tags         permissions
// @Security     Bearer
// @Produce      json
// @Param        code  query  string  true  "Código del permiso"
// @Success      200   {object}  dto.PermissionCheckResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/permissions/check [get]
func (h *PermissionHandler) Check(c *fiber.Ctx) error {
	userID, organizationID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code es requerido"})
	}
	check, err := h.resolver.CheckPermission(c.UserContext(), userID, organizationID, code)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "PERMISSION_CHECK_FAILED",
			Message: "no se pudo verificar el permiso, intente más tarde",
		})
	}
	return c.JSON(dto.PermissionCheckResponse{
		Code:          code,
		HasPermission: check.HasPermission,
		IsSuperAdmin:  check.IsSuperAdmin,
		RoleID:        check.RoleID,
		RoleName:      check.RoleName,
	})
}

// CheckMany godoc
// @Summary      Verificar varios permisos
// @Tags         permissions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckPermissionsRequest  true  "Códigos a verificar"
// @Success      200   {object}  dto.CheckPermissionsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/permissions/check [post]
func (h *PermissionHandler) CheckMany(c *fiber.Ctx) error {
	userID, organizationID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CheckPermissionsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Codes) == 0 || len(in.Codes) > maxBatchPermissions {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "codes debe tener entre 1 y 100 elementos"})
	}
	out, err := h.resolver.CheckMultiplePermissions(c.UserContext(), userID, organizationID, in.Codes)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "PERMISSION_CHECK_FAILED",
			Message: "no se pudo verificar el permiso, intente más tarde",
		})
	}
	return c.JSON(dto.CheckPermissionsResponse{Permissions: out})
}

// SetRolePermission godoc
// @Summary      Conceder o retirar un permiso a un rol de la organización
// @Tags         roles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        roleId  path  string                        true  "ID del rol"
// @Param        code    path  string                        true  "Código del permiso"
// @Param        body    body  dto.SetRolePermissionRequest  true  "allowed"
// @Success      200     {object}  dto.ResultResponse
// @Failure      403     {object}  dto.ResultResponse
// @Failure      404     {object}  dto.ResultResponse
// @Router       /api/roles/{roleId}/permissions/{code} [put]
func (h *PermissionHandler) SetRolePermission(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "organization_id requerido"})
	}
	var in dto.SetRolePermissionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return writeResult(c, h.resolver.SetRolePermission(c.UserContext(), organizationID, c.Params("roleId"), c.Params("code"), in.Allowed))
}
