package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanCodeFree es el plan que se asigna a organizaciones sin suscripción.
const PlanCodeFree = "free"

// Plan define el techo de módulos de pago y demás límites de una suscripción.
type Plan struct {
	ID           string
	Code         string
	Name         string
	PriceMonthly decimal.Decimal
	PriceYearly  decimal.Decimal
	TrialDays    int
	MaxModules   int // solo cuenta módulos de pago
	MaxBranches  int
	Features     map[string]any
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Estados de Subscription.
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionCanceled = "canceled"
	SubscriptionExpired  = "expired"
)

// Subscription vincula una organización con un plan.
type Subscription struct {
	ID             string
	OrganizationID string
	PlanID         string
	Status         string
	StartedAt      time.Time
	EndsAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsCurrent informa si la suscripción define el plan vigente (active o trialing).
func (s *Subscription) IsCurrent() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionTrialing
}
