package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

// Role is the collaborator role within an organization. Roles are claims
// consulted by the request middleware; authentication itself happens at the
// edge.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
	RoleValidator   Role = "validator"
	RoleAuditor     Role = "auditor"
)

func NewRole(r string) (Role, error) {
	role := Role(r)
	if !role.IsValid() {
		return "", errors.New("invalid role")
	}
	return role, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleContributor, RoleValidator, RoleAuditor:
		return true
	}
	return false
}

// CanWriteTaxonomy reports whether the role may add taxonomy entries.
func (r Role) CanWriteTaxonomy() bool {
	return r == RoleAdmin || r == RoleContributor
}

// User is a collaborator inside one tenant, attached to an organization by
// name.
type User struct {
	id           uuid.UUID
	tenantID     uuid.UUID
	email        string
	firstName    string
	lastName     string
	role         Role
	organization string
	createdAt    time.Time
	updatedAt    time.Time
}

type Option func(*User)

func WithID(id uuid.UUID) Option {
	return func(u *User) {
		u.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(u *User) {
		u.tenantID = tenantID
	}
}

func WithName(first, last string) Option {
	return func(u *User) {
		u.firstName = first
		u.lastName = last
	}
}

func WithOrganization(name string) Option {
	return func(u *User) {
		u.organization = name
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(u *User) {
		u.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(u *User) {
		u.updatedAt = updatedAt
	}
}

func New(email string, role Role, opts ...Option) *User {
	u := &User{
		id:        uuid.New(),
		email:     email,
		role:      role,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) TenantID() uuid.UUID  { return u.tenantID }
func (u *User) Email() string        { return u.email }
func (u *User) FirstName() string    { return u.firstName }
func (u *User) LastName() string     { return u.lastName }
func (u *User) Role() Role           { return u.role }
func (u *User) Organization() string { return u.organization }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) SetRole(role Role) {
	u.role = role
	u.updatedAt = time.Now()
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByOrganization(ctx context.Context, organization string) ([]*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
