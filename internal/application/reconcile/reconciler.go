package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
	"github.com/jhoicas/Modulos-api/pkg/logger"
	"github.com/jhoicas/Modulos-api/pkg/metrics"
)

const (
	// CodeDefaultPlanNotFound el plan por defecto configurado no existe en el catálogo.
	CodeDefaultPlanNotFound = "DEFAULT_PLAN_NOT_FOUND"
	// CodeOrganizationNotFound la organización a reparar no existe.
	CodeOrganizationNotFound = "ORGANIZATION_NOT_FOUND"
)

// engine primitivas del motor de módulos que usa la reparación. Lo implementa *entitlement.Service.
type engine interface {
	GetStatus(ctx context.Context, organizationID string) (*entitlement.Status, error)
	EnsureCoreModules(ctx context.Context, organizationID string) ([]string, error)
	Deactivate(ctx context.Context, organizationID, moduleCode string) entitlement.Result
}

// QuotaOverrun organización con más módulos de pago activos que los que permite su plan.
type QuotaOverrun struct {
	OrganizationID string `json:"organization_id"`
	Current        int    `json:"current"`
	Max            int    `json:"max"`
}

// MissingCore organización sin fila activa para uno o más módulos core.
type MissingCore struct {
	OrganizationID string   `json:"organization_id"`
	Modules        []string `json:"modules"`
}

// Report resultado de la auditoría. OrgsFailed lista las organizaciones que no se
// pudieron evaluar; el resto del recorrido sigue.
type Report struct {
	OrgsWithoutSubscription []string       `json:"orgs_without_subscription"`
	OrgsExceedingQuota      []QuotaOverrun `json:"orgs_exceeding_quota"`
	OrgsMissingCoreModules  []MissingCore  `json:"orgs_missing_core_modules"`
	OrgsFailed              []string       `json:"orgs_failed"`
}

// HasIssues informa si la auditoría encontró alguna inconsistencia o no pudo evaluar alguna organización.
func (r *Report) HasIssues() bool {
	return len(r.OrgsWithoutSubscription)+len(r.OrgsExceedingQuota)+len(r.OrgsMissingCoreModules)+len(r.OrgsFailed) > 0
}

// Flagged devuelve las organizaciones con alguna inconsistencia, sin repetidos y ordenadas.
func (r *Report) Flagged() []string {
	seen := map[string]bool{}
	for _, id := range r.OrgsWithoutSubscription {
		seen[id] = true
	}
	for _, q := range r.OrgsExceedingQuota {
		seen[q.OrganizationID] = true
	}
	for _, m := range r.OrgsMissingCoreModules {
		seen[m.OrganizationID] = true
	}
	for _, id := range r.OrgsFailed {
		seen[id] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RepairResult resultado de reparar una organización.
type RepairResult struct {
	entitlement.Result
	OrganizationID     string   `json:"organization_id"`
	AssignedPlan       string   `json:"assigned_plan,omitempty"`
	EnsuredCoreModules []string `json:"ensured_core_modules,omitempty"`
	DeactivatedModules []string `json:"deactivated_modules,omitempty"`
}

// BatchResult resultado de RepairAll.
type BatchResult struct {
	Audit    *Report        `json:"audit"`
	Results  []RepairResult `json:"results"`
	Repaired int            `json:"repaired"`
	Failed   int            `json:"failed"`
}

// Deps dependencias del reconciliador.
type Deps struct {
	Engine        engine
	Catalog       *entitlement.ModuleCatalog
	OrgModules    repository.OrganizationModuleRepository
	Organizations repository.OrganizationRepository
	Plans         repository.PlanRepository
	Subscriptions repository.SubscriptionRepository
	DefaultPlan   string
	Concurrency   int
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
	Now           func() time.Time
}

// Reconciler audita y corrige la deriva entre planes, suscripciones y módulos activos.
type Reconciler struct {
	engine        engine
	catalog       *entitlement.ModuleCatalog
	orgModules    repository.OrganizationModuleRepository
	organizations repository.OrganizationRepository
	plans         repository.PlanRepository
	subscriptions repository.SubscriptionRepository
	defaultPlan   string
	concurrency   int
	metrics       *metrics.Metrics
	log           *logger.Logger
	now           func() time.Time
}

// New construye el reconciliador.
func New(d Deps) *Reconciler {
	r := &Reconciler{
		engine:        d.Engine,
		catalog:       d.Catalog,
		orgModules:    d.OrgModules,
		organizations: d.Organizations,
		plans:         d.Plans,
		subscriptions: d.Subscriptions,
		defaultPlan:   d.DefaultPlan,
		concurrency:   d.Concurrency,
		metrics:       d.Metrics,
		log:           d.Logger,
		now:           d.Now,
	}
	if r.defaultPlan == "" {
		r.defaultPlan = entity.PlanCodeFree
	}
	if r.concurrency <= 0 {
		r.concurrency = 1
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Audit recorre todas las organizaciones y reporta las inconsistencias. No modifica nada.
// Solo los listados globales y la cancelación del contexto abortan el recorrido.
func (r *Reconciler) Audit(ctx context.Context) (*Report, error) {
	report := &Report{
		OrgsExceedingQuota:     []QuotaOverrun{},
		OrgsMissingCoreModules: []MissingCore{},
		OrgsFailed:             []string{},
	}
	without, err := r.subscriptions.ListOrganizationsWithoutSubscription(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations without subscription: %w", err)
	}
	report.OrgsWithoutSubscription = append([]string{}, without...)

	coreCodes, err := r.catalog.CoreCodes(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := r.organizations.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.auditOrg(ctx, report, id, coreCodes); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.log.Error().Err(err).Str("organization_id", id).Msg("no se pudo auditar la organización")
			report.OrgsFailed = append(report.OrgsFailed, id)
		}
	}
	return report, nil
}

func (r *Reconciler) auditOrg(ctx context.Context, report *Report, id string, coreCodes []string) error {
	st, err := r.engine.GetStatus(ctx, id)
	if err != nil {
		return fmt.Errorf("status %s: %w", id, err)
	}
	missing, err := r.missingCore(ctx, id, coreCodes)
	if err != nil {
		return err
	}
	if st.PaidActiveCount > st.MaxAllowed {
		report.OrgsExceedingQuota = append(report.OrgsExceedingQuota, QuotaOverrun{
			OrganizationID: id,
			Current:        st.PaidActiveCount,
			Max:            st.MaxAllowed,
		})
	}
	if len(missing) > 0 {
		report.OrgsMissingCoreModules = append(report.OrgsMissingCoreModules, MissingCore{OrganizationID: id, Modules: missing})
	}
	return nil
}

func (r *Reconciler) missingCore(ctx context.Context, organizationID string, coreCodes []string) ([]string, error) {
	rows, err := r.orgModules.ListActiveOrganizationModules(ctx, organizationID, true)
	if err != nil {
		return nil, fmt.Errorf("list core modules %s: %w", organizationID, err)
	}
	have := make(map[string]bool, len(rows))
	for _, row := range rows {
		have[entity.NormalizeCode(row.ModuleCode)] = true
	}
	var missing []string
	for _, c := range coreCodes {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing, nil
}

// Repair lleva una organización existente a un estado consistente:
//  1. sin suscripción vigente se le asigna el plan por defecto;
//  2. se materializa una fila activa por cada módulo core;
//  3. si excede la cuota se desactivan las activaciones más recientes hasta cumplirla.
//
// Es determinista y convergente: repetirla no cambia nada.
func (r *Reconciler) Repair(ctx context.Context, organizationID string) RepairResult {
	res := RepairResult{OrganizationID: organizationID}
	if organizationID == "" {
		res.Result = entitlement.Fail(entitlement.CodeInvalidInput, "organizationID es obligatorio")
		return r.finish(res)
	}

	org, err := r.organizations.GetByID(ctx, organizationID)
	if err != nil {
		return r.internal(res, fmt.Errorf("find organization: %w", err))
	}
	if org == nil {
		res.Result = entitlement.Fail(CodeOrganizationNotFound,
			fmt.Sprintf("la organización '%s' no existe", organizationID))
		return r.finish(res)
	}

	plan, err := r.plans.GetCurrentPlan(ctx, organizationID)
	if err != nil {
		return r.internal(res, fmt.Errorf("current plan: %w", err))
	}
	if plan == nil {
		def, err := r.plans.GetPlanByCode(ctx, r.defaultPlan)
		if err != nil {
			return r.internal(res, fmt.Errorf("default plan: %w", err))
		}
		if def == nil {
			res.Result = entitlement.Fail(CodeDefaultPlanNotFound,
				fmt.Sprintf("el plan por defecto '%s' no existe", r.defaultPlan))
			return r.finish(res)
		}
		sub := &entity.Subscription{
			OrganizationID: organizationID,
			PlanID:         def.ID,
			Status:         entity.SubscriptionActive,
			StartedAt:      r.now(),
		}
		if err := r.subscriptions.Create(ctx, sub); err != nil {
			return r.internal(res, fmt.Errorf("create subscription: %w", err))
		}
		res.AssignedPlan = def.Code
	}

	ensured, err := r.engine.EnsureCoreModules(ctx, organizationID)
	res.EnsuredCoreModules = ensured
	if err != nil {
		return r.internal(res, err)
	}

	st, err := r.engine.GetStatus(ctx, organizationID)
	if err != nil {
		return r.internal(res, err)
	}
	if excess := st.PaidActiveCount - st.MaxAllowed; excess > 0 {
		rows, err := r.orgModules.ListActiveOrganizationModules(ctx, organizationID, false)
		if err != nil {
			return r.internal(res, fmt.Errorf("list paid modules: %w", err))
		}
		// rows viene ordenado por enabled_at descendente: las primeras son las más recientes.
		if excess > len(rows) {
			excess = len(rows)
		}
		for _, row := range rows[:excess] {
			out := r.engine.Deactivate(ctx, organizationID, row.ModuleCode)
			if !out.Success && out.Code != entitlement.CodeNotActive {
				res.Result = out
				return r.finish(res)
			}
			res.DeactivatedModules = append(res.DeactivatedModules, row.ModuleCode)
		}
	}

	res.Result = entitlement.OK(repairMessage(res))
	if res.AssignedPlan != "" || len(res.EnsuredCoreModules) > 0 || len(res.DeactivatedModules) > 0 {
		r.log.Info().
			Str("organization_id", organizationID).
			Str("assigned_plan", res.AssignedPlan).
			Strs("ensured_core_modules", res.EnsuredCoreModules).
			Strs("deactivated_modules", res.DeactivatedModules).
			Msg("organización reparada")
	}
	return r.finish(res)
}

// RepairAll audita y repara cada organización marcada con concurrencia acotada.
// Un fallo en una organización no aborta el lote.
func (r *Reconciler) RepairAll(ctx context.Context) (*BatchResult, error) {
	report, err := r.Audit(ctx)
	if err != nil {
		return nil, err
	}
	flagged := report.Flagged()
	batch := &BatchResult{Audit: report, Results: make([]RepairResult, len(flagged))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, id := range flagged {
		i, id := i, id
		g.Go(func() error {
			batch.Results[i] = r.Repair(gctx, id)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range batch.Results {
		if res.Success {
			batch.Repaired++
		} else {
			batch.Failed++
		}
	}
	r.log.Info().
		Int("flagged", len(flagged)).
		Int("repaired", batch.Repaired).
		Int("failed", batch.Failed).
		Msg("reconciliación completada")
	return batch, nil
}

func repairMessage(res RepairResult) string {
	if res.AssignedPlan == "" && len(res.EnsuredCoreModules) == 0 && len(res.DeactivatedModules) == 0 {
		return "la organización ya era consistente"
	}
	msg := "organización reparada"
	if res.AssignedPlan != "" {
		msg += fmt.Sprintf("; plan asignado: %s", res.AssignedPlan)
	}
	if n := len(res.EnsuredCoreModules); n > 0 {
		msg += fmt.Sprintf("; módulos core materializados: %d", n)
	}
	if n := len(res.DeactivatedModules); n > 0 {
		msg += fmt.Sprintf("; módulos desactivados por cuota: %d", n)
	}
	return msg
}

func (r *Reconciler) internal(res RepairResult, err error) RepairResult {
	r.log.Error().Err(err).Str("organization_id", res.OrganizationID).Msg("fallo reparando organización")
	res.Result = entitlement.Fail(entitlement.CodeInternal, "no se pudo reparar la organización, intente más tarde")
	return r.finish(res)
}

func (r *Reconciler) finish(res RepairResult) RepairResult {
	if res.Success {
		r.metrics.Repair("OK")
	} else {
		r.metrics.Repair(res.Code)
	}
	return res
}
