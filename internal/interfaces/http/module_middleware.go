package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Modulos-api/internal/application/dto"
)

// accessChecker es el contrato mínimo que necesitan los middlewares. Lo implementa *permission.Resolver;
// el uso de interfaz permite probar los middlewares con dobles.
type accessChecker interface {
	CanAccessModule(ctx context.Context, userID, organizationID, moduleCode string) (bool, error)
}

// RequireModule devuelve un middleware Fiber que verifica que la organización del token tenga el
// módulo activo y que el usuario tenga acceso a él. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 Unauthorized → el token no trae usuario u organización.
//   - 403 Forbidden  → módulo no activo para la organización o usuario sin permisos del módulo.
//   - 503 Service Unavailable → fallo de infraestructura; se deniega.
func RequireModule(moduleCode string, checker accessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, organizationID, ok := requireIdentity(c)
		if !ok {
			return nil
		}
		allowed, err := checker.CanAccessModule(c.UserContext(), userID, organizationID, moduleCode)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + moduleCode + "' no está disponible para este usuario u organización",
			})
		}
		return c.Next()
	}
}
