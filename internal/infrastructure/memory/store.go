package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
)

// Asegura que Store implementa todos los puertos del catálogo.
var (
	_ repository.ModuleRepository             = (*Store)(nil)
	_ repository.OrganizationModuleRepository = (*Store)(nil)
	_ repository.PlanRepository               = (*Store)(nil)
	_ repository.SubscriptionRepository       = (*Store)(nil)
	_ repository.OrganizationRepository       = (*Store)(nil)
	_ repository.MembershipRepository         = (*Store)(nil)
	_ repository.PermissionRepository         = (*Store)(nil)
	_ repository.RoleRepository               = (*Store)(nil)
	_ entitlement.TxRunner                    = (*Store)(nil)
)

type orgModuleKey struct{ org, code string }

type rolePermKey struct{ role, perm string }

type memberKey struct{ user, org string }

// Store implementación en memoria de los puertos de persistencia.
// Pensada para desarrollo local (STORE_DRIVER=memory) y tests; no persiste nada.
// Los IDs y códigos que se guardan como claves se copian: pueden venir de buffers
// que Fiber reutiliza entre peticiones.
type Store struct {
	mu         sync.RWMutex
	modules    map[string]*entity.Module
	plans      map[string]*entity.Plan
	subs       []*entity.Subscription
	orgs       map[string]*entity.Organization
	orgModules map[orgModuleKey]*entity.OrganizationModule
	roles      map[string]*entity.Role
	perms      map[string]*entity.Permission
	rolePerms  map[rolePermKey]bool
	members    map[memberKey]*entity.OrganizationMember

	locks sync.Map // organizationID -> *sync.Mutex
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		modules:    make(map[string]*entity.Module),
		plans:      make(map[string]*entity.Plan),
		orgs:       make(map[string]*entity.Organization),
		orgModules: make(map[orgModuleKey]*entity.OrganizationModule),
		roles:      make(map[string]*entity.Role),
		perms:      make(map[string]*entity.Permission),
		rolePerms:  make(map[rolePermKey]bool),
		members:    make(map[memberKey]*entity.OrganizationMember),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga de datos
// ──────────────────────────────────────────────────────────────────────────────

// AddModule agrega (o reemplaza) un módulo del catálogo.
func (s *Store) AddModule(m entity.Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[m.Code] = &m
}

// AddPlan agrega un plan; genera ID si viene vacío.
func (s *Store) AddPlan(p entity.Plan) *entity.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.plans[p.ID] = &p
	cp := p
	return &cp
}

// AddOrganization agrega una organización.
func (s *Store) AddOrganization(o entity.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = &o
}

// AddRole agrega un rol.
func (s *Store) AddRole(r entity.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.ID] = &r
}

// AddPermission agrega un permiso; genera ID si viene vacío.
func (s *Store) AddPermission(p entity.Permission) *entity.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.perms[p.ID] = &p
	cp := p
	return &cp
}

// AddMember agrega una membresía.
func (s *Store) AddMember(m entity.OrganizationMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[memberKey{m.UserID, m.OrganizationID}] = &m
}

// PutOrganizationModule escribe una fila de activación tal cual, sin pasar por el motor.
// Sirve para reproducir estados inconsistentes.
func (s *Store) PutOrganizationModule(row entity.OrganizationModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgModules[orgModuleKey{row.OrganizationID, row.ModuleCode}] = &row
}

// CountOrganizationModules cuenta las filas (activas o no) de la organización.
func (s *Store) CountOrganizationModules(organizationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k := range s.orgModules {
		if k.org == organizationID {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner
// ──────────────────────────────────────────────────────────────────────────────

// RunLocked serializa fn por organización con un mutex dedicado.
func (s *Store) RunLocked(ctx context.Context, organizationID string, fn func(
	planRepo repository.PlanRepository,
	orgModuleRepo repository.OrganizationModuleRepository,
) error) error {
	v, _ := s.locks.LoadOrStore(strings.Clone(organizationID), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s, s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Módulos
// ──────────────────────────────────────────────────────────────────────────────

// FindModule implementa repository.ModuleRepository.
func (s *Store) FindModule(_ context.Context, code string) (*entity.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modules[code]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// ListModules implementa repository.ModuleRepository.
func (s *Store) ListModules(_ context.Context, filter entity.ModuleFilter) ([]*entity.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Module, 0, len(s.modules))
	for _, m := range s.modules {
		if filter.Matches(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

// UpsertOrganizationModule implementa repository.OrganizationModuleRepository.
func (s *Store) UpsertOrganizationModule(_ context.Context, organizationID, moduleCode string, active bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.orgModules[orgModuleKey{organizationID, moduleCode}]
	if !ok {
		organizationID, moduleCode = strings.Clone(organizationID), strings.Clone(moduleCode)
		row = &entity.OrganizationModule{
			OrganizationID: organizationID,
			ModuleCode:     moduleCode,
			EnabledAt:      at,
			CreatedAt:      at,
		}
		if !active {
			row.DisabledAt = &at
		}
		row.IsActive = active
		row.UpdatedAt = at
		s.orgModules[orgModuleKey{organizationID, moduleCode}] = row
		return nil
	}
	switch {
	case active && !row.IsActive:
		row.EnabledAt = at
		row.DisabledAt = nil
	case !active && row.IsActive:
		row.DisabledAt = &at
	}
	row.IsActive = active
	row.UpdatedAt = at
	return nil
}

// FindOrganizationModule implementa repository.OrganizationModuleRepository.
func (s *Store) FindOrganizationModule(_ context.Context, organizationID, moduleCode string) (*entity.OrganizationModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.orgModules[orgModuleKey{organizationID, moduleCode}]
	if !ok {
		return nil, nil
	}
	cp := *row
	if m, ok := s.modules[moduleCode]; ok {
		cp.IsCore = m.IsCore
	}
	return &cp, nil
}

// ListActiveOrganizationModules implementa repository.OrganizationModuleRepository.
func (s *Store) ListActiveOrganizationModules(_ context.Context, organizationID string, core bool) ([]*entity.OrganizationModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.OrganizationModule
	for k, row := range s.orgModules {
		if k.org != organizationID || !row.IsActive {
			continue
		}
		m, ok := s.modules[k.code]
		if !ok || m.IsCore != core {
			continue
		}
		cp := *row
		cp.IsCore = m.IsCore
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnabledAt.Equal(out[j].EnabledAt) {
			return out[i].EnabledAt.After(out[j].EnabledAt)
		}
		return out[i].ModuleCode < out[j].ModuleCode
	})
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Planes y suscripciones
// ──────────────────────────────────────────────────────────────────────────────

// GetCurrentPlan implementa repository.PlanRepository.
func (s *Store) GetCurrentPlan(_ context.Context, organizationID string) (*entity.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub := s.currentSubscription(organizationID)
	if sub == nil {
		return nil, nil
	}
	p, ok := s.plans[sub.PlanID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// GetPlanByCode implementa repository.PlanRepository.
func (s *Store) GetPlanByCode(_ context.Context, code string) (*entity.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.plans {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// Create implementa repository.SubscriptionRepository.
func (s *Store) Create(_ context.Context, sub *entity.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	cp.OrganizationID = strings.Clone(sub.OrganizationID)
	cp.PlanID = strings.Clone(sub.PlanID)
	if cp.ID == "" {
		cp.ID = uuid.New().String()
		sub.ID = cp.ID
	}
	s.subs = append(s.subs, &cp)
	return nil
}

// ListOrganizationsWithoutSubscription implementa repository.SubscriptionRepository.
func (s *Store) ListOrganizationsWithoutSubscription(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for id := range s.orgs {
		if s.currentSubscription(id) == nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) currentSubscription(organizationID string) *entity.Subscription {
	var cur *entity.Subscription
	for _, sub := range s.subs {
		if sub.OrganizationID != organizationID || !sub.IsCurrent() {
			continue
		}
		if cur == nil || sub.StartedAt.After(cur.StartedAt) {
			cur = sub
		}
	}
	return cur
}

// ──────────────────────────────────────────────────────────────────────────────
// Organizaciones y membresías
// ──────────────────────────────────────────────────────────────────────────────

// GetByID implementa repository.OrganizationRepository.
func (s *Store) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orgs[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

// ListIDs implementa repository.OrganizationRepository.
func (s *Store) ListIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.orgs))
	for id := range s.orgs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// FindActiveMembership implementa repository.MembershipRepository.
func (s *Store) FindActiveMembership(_ context.Context, userID, organizationID string) (*entity.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberKey{userID, organizationID}]
	if !ok || !m.IsActive {
		return nil, nil
	}
	out := &entity.Membership{
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		RoleID:         m.RoleID,
		IsSuperAdmin:   m.IsSuperAdmin,
	}
	if r, ok := s.roles[m.RoleID]; ok {
		out.RoleName = r.Name
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles y permisos
// ──────────────────────────────────────────────────────────────────────────────

// FindRole implementa repository.RoleRepository.
func (s *Store) FindRole(_ context.Context, id string) (*entity.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

// ListRolePermissionCodes implementa repository.PermissionRepository.
func (s *Store) ListRolePermissionCodes(_ context.Context, roleID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k, allowed := range s.rolePerms {
		if k.role != roleID || !allowed {
			continue
		}
		if p, ok := s.perms[k.perm]; ok {
			out = append(out, p.Code)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListPermissionsByModule implementa repository.PermissionRepository.
func (s *Store) ListPermissionsByModule(_ context.Context, moduleCode string) ([]*entity.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Permission
	for _, p := range s.perms {
		if p.Module == moduleCode {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// FindPermissionByCode implementa repository.PermissionRepository.
func (s *Store) FindPermissionByCode(_ context.Context, code string) (*entity.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.perms {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// SetRolePermission implementa repository.PermissionRepository.
func (s *Store) SetRolePermission(_ context.Context, roleID, permissionID string, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rolePermKey{roleID, permissionID}
	if !allowed {
		delete(s.rolePerms, key)
		return nil
	}
	s.rolePerms[rolePermKey{strings.Clone(roleID), strings.Clone(permissionID)}] = true
	return nil
}
