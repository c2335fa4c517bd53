package entitlement

import (
	"context"
	"fmt"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
)

// PlanResolver resuelve el plan vigente (techo de cuota) de una organización.
type PlanResolver struct {
	repo repository.PlanRepository
}

// NewPlanResolver construye el resolvedor de planes.
func NewPlanResolver(repo repository.PlanRepository) *PlanResolver {
	return &PlanResolver{repo: repo}
}

// CurrentPlan devuelve el plan de la suscripción vigente, o nil si la organización no tiene.
func (r *PlanResolver) CurrentPlan(ctx context.Context, organizationID string) (*entity.Plan, error) {
	return currentPlan(ctx, r.repo, organizationID)
}

func currentPlan(ctx context.Context, repo repository.PlanRepository, organizationID string) (*entity.Plan, error) {
	plan, err := repo.GetCurrentPlan(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("current plan: %w", err)
	}
	return plan, nil
}

// MaxModules techo de módulos de pago. Sin plan vigente solo se permiten los core.
func MaxModules(plan *entity.Plan) int {
	if plan == nil || plan.MaxModules < 0 {
		return 0
	}
	return plan.MaxModules
}
