package entity

import "time"

// Organization representa una organización/tenant del sistema.
type Organization struct {
	ID        string
	Name      string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrganizationMember vincula un usuario con una organización y un único rol.
type OrganizationMember struct {
	UserID         string
	OrganizationID string
	RoleID         string
	IsSuperAdmin   bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Membership es la proyección de una membresía activa junto con su rol.
type Membership struct {
	UserID         string
	OrganizationID string
	RoleID         string
	RoleName       string
	IsSuperAdmin   bool
}
