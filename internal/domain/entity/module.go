package entity

import "time"

// Module representa un módulo funcional del catálogo de la plataforma.
// El conjunto lo administra la plataforma, no los tenants.
type Module struct {
	Code      string
	Name      string
	IsCore    bool // core = obligatorio, siempre activo y fuera de la cuota del plan
	Rank      int  // orden de despliegue
	IsActive  bool // disponibilidad global en el catálogo
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ModuleFilter particiona el catálogo entre módulos core y de pago.
type ModuleFilter string

const (
	ModuleFilterAll  ModuleFilter = "all"
	ModuleFilterCore ModuleFilter = "core"
	ModuleFilterPaid ModuleFilter = "paid"
)

// Matches informa si el módulo pertenece a la partición del filtro.
func (f ModuleFilter) Matches(m *Module) bool {
	switch f {
	case ModuleFilterCore:
		return m.IsCore
	case ModuleFilterPaid:
		return !m.IsCore
	default:
		return true
	}
}

// OrganizationModule es el registro de activación de un módulo en una organización.
// Solo existe para módulos que la organización ha tocado; nunca se borra.
type OrganizationModule struct {
	OrganizationID string
	ModuleCode     string
	IsCore         bool // proyectado desde modules al listar
	IsActive       bool
	EnabledAt      time.Time
	DisabledAt     *time.Time // nil mientras esté activo
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
