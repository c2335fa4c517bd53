package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Modulos-api/internal/application/reconcile"
	"github.com/jhoicas/Modulos-api/pkg/logger"
)

// ReconcileHandler rutas de plataforma para auditar y reparar organizaciones.
type ReconcileHandler struct {
	rec *reconcile.Reconciler
	log *logger.Logger
}

// NewReconcileHandler construye el handler.
func NewReconcileHandler(rec *reconcile.Reconciler, log *logger.Logger) *ReconcileHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileHandler{rec: rec, log: log}
}

// Audit godoc
// @Summary      Auditar inconsistencias de todas las organizaciones
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Token  header  string  true  "Token de administración"
// @Success      200  {object}  reconcile.Report
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/admin/reconcile/audit [get]
func (h *ReconcileHandler) Audit(c *fiber.Ctx) error {
	report, err := h.rec.Audit(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("auditoría fallida")
		return internalError(c)
	}
	return c.JSON(report)
}

// FixOrganization godoc
// @Summary      Reparar una organización
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Token  header  string  true  "Token de administración"
// @Param        orgId          path    string  true  "ID de la organización"
// @Success      200  {object}  reconcile.RepairResult
// @Failure      404  {object}  reconcile.RepairResult
// @Failure      422  {object}  reconcile.RepairResult
// @Router       /api/admin/reconcile/{orgId}/fix [post]
func (h *ReconcileHandler) FixOrganization(c *fiber.Ctx) error {
	res := h.rec.Repair(c.UserContext(), c.Params("orgId"))
	return c.Status(resultStatus(res.Result)).JSON(res)
}

// FixAll godoc
// @Summary      Auditar y reparar todas las organizaciones marcadas
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Token  header  string  true  "Token de administración"
// @Success      200  {object}  reconcile.BatchResult
// @Router       /api/admin/reconcile/fix [post]
func (h *ReconcileHandler) FixAll(c *fiber.Ctx) error {
	batch, err := h.rec.RepairAll(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("reconciliación por lotes fallida")
		return internalError(c)
	}
	return c.JSON(batch)
}
