package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contadores Prometheus del motor de módulos y permisos.
// Un *Metrics nil es válido: todas las operaciones se vuelven no-op.
type Metrics struct {
	ModuleTransitions *prometheus.CounterVec
	PermissionChecks  *prometheus.CounterVec
	Repairs           *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
}

// New crea y registra las métricas en reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ModuleTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulos_module_transitions_total",
				Help: "Activaciones y desactivaciones de módulos por resultado",
			},
			[]string{"action", "code"},
		),
		PermissionChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulos_permission_checks_total",
				Help: "Chequeos de permisos por tipo y resultado",
			},
			[]string{"kind", "result"},
		),
		Repairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulos_reconcile_repairs_total",
				Help: "Reparaciones de organizaciones por resultado",
			},
			[]string{"outcome"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulos_active_set_cache_lookups_total",
				Help: "Consultas a la caché de módulos activos",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.ModuleTransitions, m.PermissionChecks, m.Repairs, m.CacheLookups)
	return m
}

// ModuleTransition registra una activación/desactivación. code es "OK" o el código de fallo.
func (m *Metrics) ModuleTransition(action, code string) {
	if m == nil {
		return
	}
	m.ModuleTransitions.WithLabelValues(action, code).Inc()
}

// PermissionCheck registra un chequeo: result es granted, denied o error.
func (m *Metrics) PermissionCheck(kind, result string) {
	if m == nil {
		return
	}
	m.PermissionChecks.WithLabelValues(kind, result).Inc()
}

// Repair registra el resultado de reparar una organización.
func (m *Metrics) Repair(outcome string) {
	if m == nil {
		return
	}
	m.Repairs.WithLabelValues(outcome).Inc()
}

// CacheLookup registra hit o miss de la caché de módulos activos.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
