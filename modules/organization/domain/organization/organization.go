package organization

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("organization not found")

// Type drives the wizard's conditional branch: business lines and
// subsidiaries are captured only for multi-entity organizations.
type Type string

const (
	TypeSimple           Type = "simple"
	TypeWithSubsidiaries Type = "with_subsidiaries"
	TypeGroup            Type = "group"
)

func NewType(t string) (Type, error) {
	typ := Type(t)
	if !typ.IsValid() {
		return "", errors.New("invalid organization type")
	}
	return typ, nil
}

func (t Type) IsValid() bool {
	switch t {
	case TypeSimple, TypeWithSubsidiaries, TypeGroup:
		return true
	}
	return false
}

// HasSubsidiaries reports whether the type carries business-line and
// subsidiary sub-records.
func (t Type) HasSubsidiaries() bool {
	return t == TypeWithSubsidiaries || t == TypeGroup
}

// Subsidiary is a legal entity under a multi-entity organization.
type Subsidiary struct {
	Name         string
	BusinessLine string
}

// Site is a physical location data is collected for.
type Site struct {
	Name     string
	Location string
}

// Organization is one reporting entity inside a tenant. Its name doubles as
// the shared-nothing partition key for per-organization records.
type Organization struct {
	id            uuid.UUID
	tenantID      uuid.UUID
	name          string
	orgType       Type
	businessLines []string
	subsidiaries  []Subsidiary
	sites         []Site
	createdAt     time.Time
	updatedAt     time.Time
}

type Option func(*Organization)

func WithID(id uuid.UUID) Option {
	return func(o *Organization) {
		o.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(o *Organization) {
		o.tenantID = tenantID
	}
}

func WithBusinessLines(lines []string) Option {
	return func(o *Organization) {
		o.businessLines = lines
	}
}

func WithSubsidiaries(subs []Subsidiary) Option {
	return func(o *Organization) {
		o.subsidiaries = subs
	}
}

func WithSites(sites []Site) Option {
	return func(o *Organization) {
		o.sites = sites
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(o *Organization) {
		o.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(o *Organization) {
		o.updatedAt = updatedAt
	}
}

func New(name string, orgType Type, opts ...Option) *Organization {
	o := &Organization{
		id:        uuid.New(),
		name:      name,
		orgType:   orgType,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Organization) ID() uuid.UUID              { return o.id }
func (o *Organization) TenantID() uuid.UUID        { return o.tenantID }
func (o *Organization) Name() string               { return o.name }
func (o *Organization) Type() Type                 { return o.orgType }
func (o *Organization) BusinessLines() []string    { return o.businessLines }
func (o *Organization) Subsidiaries() []Subsidiary { return o.subsidiaries }
func (o *Organization) Sites() []Site              { return o.sites }
func (o *Organization) CreatedAt() time.Time       { return o.createdAt }
func (o *Organization) UpdatedAt() time.Time       { return o.updatedAt }

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	GetByName(ctx context.Context, name string) (*Organization, error)
	List(ctx context.Context) ([]*Organization, error)
	Create(ctx context.Context, o *Organization) (*Organization, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
