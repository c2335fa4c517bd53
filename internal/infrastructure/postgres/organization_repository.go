package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
)

var (
	_ repository.OrganizationRepository = (*OrganizationRepo)(nil)
	_ repository.MembershipRepository   = (*MembershipRepo)(nil)
)

// OrganizationRepo implementación del puerto OrganizationRepository sobre PostgreSQL.
type OrganizationRepo struct {
	q Querier
}

// NewOrganizationRepository construye el adaptador de persistencia para organizaciones.
func NewOrganizationRepository(q Querier) *OrganizationRepo {
	return &OrganizationRepo{q: q}
}

// GetByID obtiene una organización por ID.
func (r *OrganizationRepo) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	if !validID(id) {
		return nil, nil
	}
	const query = `SELECT id, name, status, created_at, updated_at FROM organizations WHERE id = $1`
	var o entity.Organization
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.Name, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &o, nil
}

// ListIDs devuelve los IDs de todas las organizaciones, en orden estable.
func (r *OrganizationRepo) ListIDs(ctx context.Context) ([]string, error) {
	return collectIDs(ctx, r.q, `SELECT id FROM organizations ORDER BY id`)
}

// MembershipRepo resuelve membresías activas junto con el nombre del rol.
type MembershipRepo struct {
	q Querier
}

// NewMembershipRepository construye el adaptador.
func NewMembershipRepository(q Querier) *MembershipRepo {
	return &MembershipRepo{q: q}
}

// FindActiveMembership devuelve (nil, nil) si el usuario no es miembro activo de la organización.
func (r *MembershipRepo) FindActiveMembership(ctx context.Context, userID, organizationID string) (*entity.Membership, error) {
	if !validID(userID) || !validID(organizationID) {
		return nil, nil
	}
	const query = `
		SELECT m.user_id, m.organization_id, m.role_id, COALESCE(r.name, ''), m.is_super_admin
		  FROM organization_members m
		  LEFT JOIN roles r ON r.id = m.role_id
		 WHERE m.user_id = $1 AND m.organization_id = $2 AND m.is_active`
	var ms entity.Membership
	err := r.q.QueryRow(ctx, query, userID, organizationID).Scan(
		&ms.UserID, &ms.OrganizationID, &ms.RoleID, &ms.RoleName, &ms.IsSuperAdmin,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &ms, nil
}
