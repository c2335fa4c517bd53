package dto

import "github.com/shopspring/decimal"

// ModuleResponse salida de un módulo del catálogo.
type ModuleResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	IsCore bool   `json:"is_core"`
	Rank   int    `json:"rank"`
}

// PlanResponse plan vigente de la organización.
type PlanResponse struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	PriceMonthly decimal.Decimal `json:"price_monthly"`
	PriceYearly  decimal.Decimal `json:"price_yearly"`
	TrialDays    int             `json:"trial_days"`
	MaxModules   int             `json:"max_modules"`
	MaxBranches  int             `json:"max_branches"`
	Features     map[string]any  `json:"features,omitempty"`
}

// ModuleStatusResponse estado de módulos de la organización del token.
type ModuleStatusResponse struct {
	Plan             *PlanResponse    `json:"plan"`
	ActiveModules    []string         `json:"active_modules"`
	ActiveCount      int              `json:"active_count"`
	PaidActiveCount  int              `json:"paid_active_count"`
	MaxAllowed       int              `json:"max_allowed"`
	CanActivateMore  bool             `json:"can_activate_more"`
	AvailableModules []ModuleResponse `json:"available_modules"`
}

// ModuleAccessResponse respuesta de GET /api/modules/:code/access.
type ModuleAccessResponse struct {
	Module    string `json:"module"`
	CanAccess bool   `json:"can_access"`
}
