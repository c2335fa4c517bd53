package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Modulos-api/internal/application/dto"
	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/application/permission"
	"github.com/jhoicas/Modulos-api/internal/application/reconcile"
)

// resultStatus traduce el código de un Result al status HTTP.
func resultStatus(r entitlement.Result) int {
	if r.Success {
		return fiber.StatusOK
	}
	switch r.Code {
	case entitlement.CodeInvalidInput:
		return fiber.StatusBadRequest
	case entitlement.CodeModuleNotFound, permission.CodeRoleNotFound, permission.CodePermissionNotFound,
		reconcile.CodeOrganizationNotFound:
		return fiber.StatusNotFound
	case entitlement.CodeAlreadyActive, entitlement.CodeNotActive:
		return fiber.StatusConflict
	case entitlement.CodeCoreModuleProtected, permission.CodeRoleProtected:
		return fiber.StatusForbidden
	case entitlement.CodeQuotaExceeded, entitlement.CodeModuleUnavailable, reconcile.CodeDefaultPlanNotFound:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func toResultResponse(r entitlement.Result) dto.ResultResponse {
	return dto.ResultResponse{Success: r.Success, Message: r.Message, Code: r.Code}
}

func writeResult(c *fiber.Ctx, r entitlement.Result) error {
	return c.Status(resultStatus(r)).JSON(toResultResponse(r))
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code:    entitlement.CodeInternal,
		Message: "no se pudo completar la operación, intente más tarde",
	})
}
