package repository

import (
	"context"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
)

// PlanRepository puerto de lectura de planes.
type PlanRepository interface {
	// GetCurrentPlan resuelve suscripción vigente -> plan. Devuelve (nil, nil) si no hay suscripción.
	GetCurrentPlan(ctx context.Context, organizationID string) (*entity.Plan, error)
	// GetPlanByCode devuelve (nil, nil) si el plan no existe.
	GetPlanByCode(ctx context.Context, code string) (*entity.Plan, error)
}

// SubscriptionRepository puerto de persistencia de suscripciones.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	// ListOrganizationsWithoutSubscription devuelve los IDs de organizaciones sin suscripción vigente.
	ListOrganizationsWithoutSubscription(ctx context.Context) ([]string, error)
}
