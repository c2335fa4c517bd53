package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Modulos-api/internal/domain"
	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
)

var (
	_ repository.ModuleRepository             = (*ModuleRepo)(nil)
	_ repository.OrganizationModuleRepository = (*OrganizationModuleRepo)(nil)
)

// ModuleRepo implementación del catálogo de módulos sobre PostgreSQL.
type ModuleRepo struct {
	q Querier
}

// NewModuleRepository construye el adaptador. Acepta pool o tx (Querier).
func NewModuleRepository(q Querier) *ModuleRepo {
	return &ModuleRepo{q: q}
}

const moduleColumns = `code, name, is_core, rank, is_active, created_at, updated_at`

// FindModule obtiene un módulo por código.
func (r *ModuleRepo) FindModule(ctx context.Context, code string) (*entity.Module, error) {
	var m entity.Module
	err := r.q.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE code = $1`, code).Scan(
		&m.Code, &m.Name, &m.IsCore, &m.Rank, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get module: %w", err)
	}
	return &m, nil
}

// ListModules lista la partición pedida del catálogo ordenada por rank.
func (r *ModuleRepo) ListModules(ctx context.Context, filter entity.ModuleFilter) ([]*entity.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules`
	switch filter {
	case entity.ModuleFilterCore:
		query += ` WHERE is_core`
	case entity.ModuleFilterPaid:
		query += ` WHERE NOT is_core`
	}
	query += ` ORDER BY rank, code`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var list []*entity.Module
	for rows.Next() {
		var m entity.Module
		if err := rows.Scan(&m.Code, &m.Name, &m.IsCore, &m.Rank, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// OrganizationModuleRepo persistencia de organization_modules.
type OrganizationModuleRepo struct {
	q Querier
}

// NewOrganizationModuleRepository construye el adaptador. Acepta pool o tx (Querier).
func NewOrganizationModuleRepository(q Querier) *OrganizationModuleRepo {
	return &OrganizationModuleRepo{q: q}
}

// UpsertOrganizationModule crea o actualiza la fila de activación.
// enabled_at solo cambia en la transición inactivo -> activo; disabled_at en activo -> inactivo.
func (r *OrganizationModuleRepo) UpsertOrganizationModule(ctx context.Context, organizationID, moduleCode string, active bool, at time.Time) error {
	const query = `
		INSERT INTO organization_modules
			(organization_id, module_code, is_active, enabled_at, disabled_at, created_at, updated_at)
		VALUES ($1, $2, $3::boolean, $4::timestamptz,
		        CASE WHEN $3::boolean THEN NULL ELSE $4::timestamptz END, $4::timestamptz, $4::timestamptz)
		ON CONFLICT (organization_id, module_code) DO UPDATE SET
			enabled_at = CASE
				WHEN EXCLUDED.is_active AND NOT organization_modules.is_active THEN EXCLUDED.updated_at
				ELSE organization_modules.enabled_at END,
			disabled_at = CASE
				WHEN EXCLUDED.is_active THEN NULL
				WHEN organization_modules.is_active THEN EXCLUDED.updated_at
				ELSE organization_modules.disabled_at END,
			is_active  = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`
	if !validID(organizationID) {
		return fmt.Errorf("upsert organization module: organization %q: %w", organizationID, domain.ErrInvalidInput)
	}
	if _, err := r.q.Exec(ctx, query, organizationID, moduleCode, active, at); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("upsert organization module: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("upsert organization module: %w", err)
	}
	return nil
}

// FindOrganizationModule obtiene la fila (organización, módulo) si existe.
func (r *OrganizationModuleRepo) FindOrganizationModule(ctx context.Context, organizationID, moduleCode string) (*entity.OrganizationModule, error) {
	if !validID(organizationID) {
		return nil, nil
	}
	const query = `
		SELECT om.organization_id, om.module_code, m.is_core, om.is_active,
		       om.enabled_at, om.disabled_at, om.created_at, om.updated_at
		  FROM organization_modules om
		  JOIN modules m ON m.code = om.module_code
		 WHERE om.organization_id = $1 AND om.module_code = $2`
	var row entity.OrganizationModule
	err := r.q.QueryRow(ctx, query, organizationID, moduleCode).Scan(
		&row.OrganizationID, &row.ModuleCode, &row.IsCore, &row.IsActive,
		&row.EnabledAt, &row.DisabledAt, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get organization module: %w", err)
	}
	return &row, nil
}

// ListActiveOrganizationModules lista las filas activas core o de pago, más recientes primero.
func (r *OrganizationModuleRepo) ListActiveOrganizationModules(ctx context.Context, organizationID string, core bool) ([]*entity.OrganizationModule, error) {
	if !validID(organizationID) {
		return nil, nil
	}
	const query = `
		SELECT om.organization_id, om.module_code, m.is_core, om.is_active,
		       om.enabled_at, om.disabled_at, om.created_at, om.updated_at
		  FROM organization_modules om
		  JOIN modules m ON m.code = om.module_code
		 WHERE om.organization_id = $1 AND om.is_active AND m.is_core = $2
		 ORDER BY om.enabled_at DESC, om.module_code`
	rows, err := r.q.Query(ctx, query, organizationID, core)
	if err != nil {
		return nil, fmt.Errorf("list organization modules: %w", err)
	}
	defer rows.Close()

	var list []*entity.OrganizationModule
	for rows.Next() {
		var row entity.OrganizationModule
		if err := rows.Scan(
			&row.OrganizationID, &row.ModuleCode, &row.IsCore, &row.IsActive,
			&row.EnabledAt, &row.DisabledAt, &row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan organization module: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}
