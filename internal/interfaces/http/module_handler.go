package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Modulos-api/internal/application/dto"
	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/application/permission"
	"github.com/jhoicas/Modulos-api/pkg/logger"
)

// ModuleHandler maneja el estado y las transiciones de módulos de la organización del token.
type ModuleHandler struct {
	svc      *entitlement.Service
	resolver *permission.Resolver
	log      *logger.Logger
}

// NewModuleHandler construye el handler.
func NewModuleHandler(svc *entitlement.Service, resolver *permission.Resolver, log *logger.Logger) *ModuleHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ModuleHandler{svc: svc, resolver: resolver, log: log}
}

// Status godoc
// @Summary      Estado de módulos de la organización
// @Tags         modules
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ModuleStatusResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/modules/status [get]
func (h *ModuleHandler) Status(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "organization_id requerido"})
	}
	st, err := h.svc.GetStatus(c.UserContext(), organizationID)
	if err != nil {
		h.log.Error().Err(err).Str("organization_id", organizationID).Msg("no se pudo calcular el estado de módulos")
		return internalError(c)
	}
	return c.JSON(toModuleStatusResponse(st))
}

// Activate godoc
// @Summary      Activar módulo de pago
// @Tags         modules
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del módulo"
// @Success      200   {object}  dto.ResultResponse
// @Failure      404   {object}  dto.ResultResponse
// @Failure      409   {object}  dto.ResultResponse
// @Failure      422   {object}  dto.ResultResponse
// @Router       /api/modules/{code}/activate [post]
func (h *ModuleHandler) Activate(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "organization_id requerido"})
	}
	return writeResult(c, h.svc.Activate(c.UserContext(), organizationID, c.Params("code")))
}

// Deactivate godoc
// @Summary      Desactivar módulo de pago
// @Tags         modules
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del módulo"
// @Success      200   {object}  dto.ResultResponse
// @Failure      403   {object}  dto.ResultResponse
// @Failure      404   {object}  dto.ResultResponse
// @Failure      409   {object}  dto.ResultResponse
// @Router       /api/modules/{code}/deactivate [post]
func (h *ModuleHandler) Deactivate(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "organization_id requerido"})
	}
	return writeResult(c, h.svc.Deactivate(c.UserContext(), organizationID, c.Params("code")))
}

// Access godoc
// @Summary      ¿Puede el usuario entrar al módulo?
// @Tags         modules
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del módulo"
// @Success      200   {object}  dto.ModuleAccessResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/modules/{code}/access [get]
func (h *ModuleHandler) Access(c *fiber.Ctx) error {
	userID, organizationID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	code := c.Params("code")
	allowed, err := h.resolver.CanAccessModule(c.UserContext(), userID, organizationID, code)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "MODULE_CHECK_FAILED",
			Message: "no se pudo verificar el módulo, intente más tarde",
		})
	}
	return c.JSON(dto.ModuleAccessResponse{Module: code, CanAccess: allowed})
}
