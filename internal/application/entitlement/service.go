package entitlement

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
	"github.com/jhoicas/Modulos-api/pkg/logger"
	"github.com/jhoicas/Modulos-api/pkg/metrics"
)

// Status fotografía del estado de módulos de una organización.
type Status struct {
	Plan              *entity.Plan
	ActiveModuleCodes []string // core ∪ filas activas, en orden de rank
	ActiveCount       int
	PaidActiveCount   int
	MaxAllowed        int
	CanActivateMore   bool
	AvailableModules  []*entity.Module // candidatos a activar
}

// IsActive informa si el código está en el conjunto activo.
func (s *Status) IsActive(code string) bool {
	for _, c := range s.ActiveModuleCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Deps dependencias del motor de módulos.
type Deps struct {
	Catalog      *ModuleCatalog
	Plans        *PlanResolver
	OrgModules   repository.OrganizationModuleRepository
	Tx           TxRunner
	Cache        ActiveSetCache         // opcional
	Bootstrapper PermissionBootstrapper // opcional
	Metrics      *metrics.Metrics       // opcional
	Logger       *logger.Logger         // opcional
	Now          func() time.Time       // opcional, para tests
}

// Service es el motor de habilitación de módulos: calcula el estado de una organización
// y aplica las transiciones activar/desactivar respetando la cuota del plan.
// Es el único punto de la aplicación que escribe organization_modules.
type Service struct {
	catalog    *ModuleCatalog
	plans      *PlanResolver
	orgModules repository.OrganizationModuleRepository
	tx         TxRunner
	cache      ActiveSetCache
	bootstrap  PermissionBootstrapper
	metrics    *metrics.Metrics
	log        *logger.Logger
	now        func() time.Time

	// generación por organización; cada invalidación la incrementa.
	gens sync.Map // organizationID -> *atomic.Uint64
}

// NewService construye el motor.
func NewService(d Deps) *Service {
	s := &Service{
		catalog:    d.Catalog,
		plans:      d.Plans,
		orgModules: d.OrgModules,
		tx:         d.Tx,
		cache:      d.Cache,
		bootstrap:  d.Bootstrapper,
		metrics:    d.Metrics,
		log:        d.Logger,
		now:        d.Now,
	}
	if s.cache == nil {
		s.cache = NopCache{}
	}
	if s.bootstrap == nil {
		s.bootstrap = NopBootstrapper{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Catalog expone el catálogo de módulos usado por el motor.
func (s *Service) Catalog() *ModuleCatalog { return s.catalog }

// GetStatus calcula el estado de módulos de la organización. Los errores son de infraestructura.
func (s *Service) GetStatus(ctx context.Context, organizationID string) (*Status, error) {
	gen := s.generation(organizationID)
	seen := gen.Load()
	modules, err := s.catalog.List(ctx, entity.ModuleFilterAll)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.CurrentPlan(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	rows, err := s.orgModules.ListActiveOrganizationModules(ctx, organizationID, false)
	if err != nil {
		return nil, fmt.Errorf("list active modules: %w", err)
	}
	st := buildStatus(plan, modules, rows)
	s.fill(ctx, organizationID, gen, seen, st.ActiveModuleCodes)
	return st, nil
}

// ActiveModuleCodes devuelve el conjunto activo, desde caché si está disponible.
func (s *Service) ActiveModuleCodes(ctx context.Context, organizationID string) ([]string, error) {
	codes, ok, err := s.cache.Get(ctx, organizationID)
	if err != nil {
		s.log.Warn().Err(err).Str("organization_id", organizationID).Msg("caché de módulos activos no disponible")
	}
	s.metrics.CacheLookup(ok)
	if ok {
		return codes, nil
	}
	st, err := s.GetStatus(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	return st.ActiveModuleCodes, nil
}

// IsModuleActive informa si el módulo está en el conjunto activo de la organización.
// Devuelve false (sin error) si no lo está; error solo ante fallos de infraestructura.
func (s *Service) IsModuleActive(ctx context.Context, organizationID, moduleCode string) (bool, error) {
	if organizationID == "" || moduleCode == "" {
		return false, fmt.Errorf("module: organizationID y moduleCode son obligatorios")
	}
	codes, err := s.ActiveModuleCodes(ctx, organizationID)
	if err != nil {
		return false, err
	}
	code := entity.NormalizeCode(moduleCode)
	for _, c := range codes {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}

// Activate activa un módulo de pago para la organización si la cuota del plan lo permite.
// La verificación de cuota y la escritura ocurren bajo el candado de la organización.
func (s *Service) Activate(ctx context.Context, organizationID, moduleCode string) Result {
	const action = "activate"
	code := entity.NormalizeCode(moduleCode)
	if organizationID == "" || code == "" {
		return s.finish(action, Fail(CodeInvalidInput, "organizationID y código de módulo son obligatorios"))
	}
	module, err := s.catalog.Find(ctx, code)
	if err != nil {
		return s.internal(action, organizationID, code, err)
	}
	if module == nil {
		return s.finish(action, Fail(CodeModuleNotFound, fmt.Sprintf("el módulo '%s' no existe", code)))
	}
	// Los módulos core pertenecen siempre al conjunto activo, con o sin fila.
	// Sus filas las materializa EnsureCoreModules.
	if module.IsCore {
		return s.finish(action, alreadyActive(code))
	}

	var res Result
	err = s.tx.RunLocked(ctx, organizationID, func(planRepo repository.PlanRepository, orgModuleRepo repository.OrganizationModuleRepository) error {
		rows, err := orgModuleRepo.ListActiveOrganizationModules(ctx, organizationID, false)
		if err != nil {
			return fmt.Errorf("list active modules: %w", err)
		}
		for _, r := range rows {
			if entity.NormalizeCode(r.ModuleCode) == code {
				res = alreadyActive(code)
				return nil
			}
		}
		if !module.IsActive {
			res = Fail(CodeModuleUnavailable, fmt.Sprintf("el módulo '%s' no está disponible en el catálogo", code))
			return nil
		}
		plan, err := currentPlan(ctx, planRepo, organizationID)
		if err != nil {
			return err
		}
		limit := MaxModules(plan)
		if len(rows) >= limit {
			res = Fail(CodeQuotaExceeded, fmt.Sprintf(
				"límite de módulos alcanzado: su plan permite %d módulo(s) de pago; actualice el plan para activar más", limit))
			return nil
		}
		if err := orgModuleRepo.UpsertOrganizationModule(ctx, organizationID, code, true, s.now()); err != nil {
			return fmt.Errorf("activate module %s: %w", code, err)
		}
		res = OK(fmt.Sprintf("módulo '%s' activado", code))
		return nil
	})
	if err != nil {
		return s.internal(action, organizationID, code, err)
	}
	if res.Success {
		s.invalidate(ctx, organizationID)
		s.log.Info().Str("organization_id", organizationID).Str("module", code).Msg("módulo activado")
	}
	return s.finish(action, res)
}

// Deactivate desactiva un módulo de pago. Los módulos core nunca se desactivan por esta vía.
func (s *Service) Deactivate(ctx context.Context, organizationID, moduleCode string) Result {
	const action = "deactivate"
	code := entity.NormalizeCode(moduleCode)
	if organizationID == "" || code == "" {
		return s.finish(action, Fail(CodeInvalidInput, "organizationID y código de módulo son obligatorios"))
	}
	module, err := s.catalog.Find(ctx, code)
	if err != nil {
		return s.internal(action, organizationID, code, err)
	}
	if module == nil {
		return s.finish(action, Fail(CodeModuleNotFound, fmt.Sprintf("el módulo '%s' no existe", code)))
	}
	if module.IsCore {
		return s.finish(action, Fail(CodeCoreModuleProtected, fmt.Sprintf("el módulo '%s' es core y no se puede desactivar", code)))
	}
	row, err := s.orgModules.FindOrganizationModule(ctx, organizationID, code)
	if err != nil {
		return s.internal(action, organizationID, code, err)
	}
	if row == nil || !row.IsActive {
		return s.finish(action, Fail(CodeNotActive, fmt.Sprintf("el módulo '%s' no está activo para esta organización", code)))
	}
	if err := s.orgModules.UpsertOrganizationModule(ctx, organizationID, code, false, s.now()); err != nil {
		return s.internal(action, organizationID, code, err)
	}
	s.invalidate(ctx, organizationID)
	s.log.Info().Str("organization_id", organizationID).Str("module", code).Msg("módulo desactivado")
	return s.finish(action, OK(fmt.Sprintf("módulo '%s' desactivado", code)))
}

// EnsureCoreModules materializa una fila activa para cada módulo core que no la tenga
// y ejecuta el bootstrap de permisos del módulo. Idempotente: devuelve los códigos materializados.
func (s *Service) EnsureCoreModules(ctx context.Context, organizationID string) ([]string, error) {
	core, err := s.catalog.List(ctx, entity.ModuleFilterCore)
	if err != nil {
		return nil, err
	}
	var ensured []string
	for _, m := range core {
		row, err := s.orgModules.FindOrganizationModule(ctx, organizationID, m.Code)
		if err != nil {
			return ensured, fmt.Errorf("find core module %s: %w", m.Code, err)
		}
		if row != nil && row.IsActive {
			continue
		}
		if err := s.orgModules.UpsertOrganizationModule(ctx, organizationID, m.Code, true, s.now()); err != nil {
			return ensured, fmt.Errorf("ensure core module %s: %w", m.Code, err)
		}
		if err := s.bootstrap.BootstrapModulePermissions(ctx, organizationID, m.Code); err != nil {
			return ensured, fmt.Errorf("bootstrap permissions %s: %w", m.Code, err)
		}
		ensured = append(ensured, m.Code)
	}
	if len(ensured) > 0 {
		s.invalidate(ctx, organizationID)
	}
	return ensured, nil
}

func buildStatus(plan *entity.Plan, modules []*entity.Module, paidRows []*entity.OrganizationModule) *Status {
	active := make(map[string]bool, len(paidRows))
	for _, r := range paidRows {
		active[entity.NormalizeCode(r.ModuleCode)] = true
	}
	st := &Status{
		Plan:              plan,
		MaxAllowed:        MaxModules(plan),
		ActiveModuleCodes: []string{},
		AvailableModules:  []*entity.Module{},
	}
	for _, m := range modules {
		switch {
		case m.IsCore:
			st.ActiveModuleCodes = append(st.ActiveModuleCodes, m.Code)
		case active[m.Code]:
			st.ActiveModuleCodes = append(st.ActiveModuleCodes, m.Code)
			st.PaidActiveCount++
		case m.IsActive:
			st.AvailableModules = append(st.AvailableModules, m)
		}
	}
	st.ActiveCount = len(st.ActiveModuleCodes)
	st.CanActivateMore = st.PaidActiveCount < st.MaxAllowed
	return st
}

func alreadyActive(code string) Result {
	return Fail(CodeAlreadyActive, fmt.Sprintf("el módulo '%s' ya está activo", code))
}

// fill cachea el conjunto leído en la generación seen. Si una mutación invalidó entre la
// lectura y el Set, la entrada escrita ya es vieja y se borra.
func (s *Service) fill(ctx context.Context, organizationID string, gen *atomic.Uint64, seen uint64, codes []string) {
	if err := s.cache.Set(ctx, organizationID, codes); err != nil {
		s.log.Warn().Err(err).Str("organization_id", organizationID).Msg("no se pudo cachear módulos activos")
		return
	}
	if gen.Load() != seen {
		s.dropCache(ctx, organizationID)
	}
}

func (s *Service) generation(organizationID string) *atomic.Uint64 {
	if v, ok := s.gens.Load(organizationID); ok {
		return v.(*atomic.Uint64)
	}
	v, _ := s.gens.LoadOrStore(strings.Clone(organizationID), new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

// invalidate se llama después de confirmar la escritura: primero avanza la generación
// y luego borra la entrada.
func (s *Service) invalidate(ctx context.Context, organizationID string) {
	s.generation(organizationID).Add(1)
	s.dropCache(ctx, organizationID)
}

func (s *Service) dropCache(ctx context.Context, organizationID string) {
	if err := s.cache.Invalidate(ctx, organizationID); err != nil {
		s.log.Warn().Err(err).Str("organization_id", organizationID).Msg("no se pudo invalidar la caché de módulos")
	}
}

func (s *Service) internal(action, organizationID, code string, err error) Result {
	s.log.Error().Err(err).
		Str("action", action).
		Str("organization_id", organizationID).
		Str("module", code).
		Msg("fallo de infraestructura en motor de módulos")
	return s.finish(action, Fail(CodeInternal, internalMessage))
}

func (s *Service) finish(action string, r Result) Result {
	s.metrics.ModuleTransition(action, outcome(r))
	return r
}
