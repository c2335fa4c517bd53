package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Modulos-api/internal/domain"
	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
)

var (
	_ repository.PlanRepository         = (*PlanRepo)(nil)
	_ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)
)

// PlanRepo implementación del puerto PlanRepository sobre PostgreSQL.
// Los precios NUMERIC se escanean a decimal.Decimal gracias al codec registrado en NewPool.
type PlanRepo struct {
	q Querier
}

// NewPlanRepository construye el adaptador. Acepta pool o tx (Querier).
func NewPlanRepository(q Querier) *PlanRepo {
	return &PlanRepo{q: q}
}

const planColumns = `p.id, p.code, p.name, p.price_monthly, p.price_yearly, p.trial_days,
	p.max_modules, p.max_branches, p.features, p.is_active, p.created_at, p.updated_at`

func scanPlan(row interface{ Scan(dest ...any) error }) (*entity.Plan, error) {
	var p entity.Plan
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.PriceMonthly, &p.PriceYearly, &p.TrialDays,
		&p.MaxModules, &p.MaxBranches, &p.Features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetCurrentPlan resuelve la suscripción vigente (active o trialing) más reciente y su plan.
func (r *PlanRepo) GetCurrentPlan(ctx context.Context, organizationID string) (*entity.Plan, error) {
	if !validID(organizationID) {
		return nil, nil
	}
	query := `
		SELECT ` + planColumns + `
		  FROM subscriptions s
		  JOIN plans p ON p.id = s.plan_id
		 WHERE s.organization_id = $1 AND s.status IN ('active', 'trialing')
		 ORDER BY s.started_at DESC
		 LIMIT 1`
	p, err := scanPlan(r.q.QueryRow(ctx, query, organizationID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get current plan: %w", err)
	}
	return p, nil
}

// GetPlanByCode obtiene un plan por código.
func (r *PlanRepo) GetPlanByCode(ctx context.Context, code string) (*entity.Plan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, `SELECT `+planColumns+` FROM plans p WHERE p.code = $1`, code))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan by code: %w", err)
	}
	return p, nil
}

// SubscriptionRepo persistencia de suscripciones.
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador. Acepta pool o tx (Querier).
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// Create persiste una suscripción; genera ID y fechas si vienen vacíos.
// El índice único parcial impide dos suscripciones vigentes para la misma organización.
func (r *SubscriptionRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	const query = `
		INSERT INTO subscriptions (id, organization_id, plan_id, status, started_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		sub.ID, sub.OrganizationID, sub.PlanID, sub.Status,
		sub.StartedAt, sub.EndsAt, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert subscription: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// ListOrganizationsWithoutSubscription IDs de organizaciones sin suscripción vigente.
func (r *SubscriptionRepo) ListOrganizationsWithoutSubscription(ctx context.Context) ([]string, error) {
	const query = `
		SELECT o.id
		  FROM organizations o
		 WHERE NOT EXISTS (
			SELECT 1 FROM subscriptions s
			 WHERE s.organization_id = o.id AND s.status IN ('active', 'trialing'))
		 ORDER BY o.id`
	return collectIDs(ctx, r.q, query)
}

func collectIDs(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
