package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Modulos-api/internal/application/dto"
	"github.com/jhoicas/Modulos-api/internal/application/permission"
)

type permissionChecker interface {
	CheckPermission(ctx context.Context, userID, organizationID, permissionCode string) (permission.Check, error)
}

// RequirePermission exige un permiso granular al usuario del token (el super-admin siempre pasa).
// 403 FORBIDDEN si no lo tiene, 503 si no se pudo resolver.
func RequirePermission(permissionCode string, checker permissionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, organizationID, ok := requireIdentity(c)
		if !ok {
			return nil
		}
		check, err := checker.CheckPermission(c.UserContext(), userID, organizationID, permissionCode)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_CHECK_FAILED",
				Message: "no se pudo verificar el permiso, intente más tarde",
			})
		}
		if !check.HasPermission {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "se requiere el permiso '" + permissionCode + "'",
			})
		}
		return c.Next()
	}
}
