package repository

import (
	"context"

	"github.com/jhoicas/Modulos-api/internal/domain/entity"
)

// OrganizationRepository define el puerto de persistencia para Organization (DIP).
// La implementación vive en infrastructure.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	// ListIDs devuelve todos los IDs de organización en orden estable.
	ListIDs(ctx context.Context) ([]string, error)
}

// MembershipRepository resuelve la membresía activa de un usuario.
type MembershipRepository interface {
	// FindActiveMembership devuelve (nil, nil) si no existe membresía activa.
	FindActiveMembership(ctx context.Context, userID, organizationID string) (*entity.Membership, error)
}
