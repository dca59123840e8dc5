package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/greenweave/greenweave/modules/core/domain/entities/tenant"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

type TenantService struct {
	repo      tenant.Repository
	publisher eventbus.EventBus
}

func NewTenantService(repo tenant.Repository, publisher eventbus.EventBus) *TenantService {
	return &TenantService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TenantService) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return s.repo.GetByDomain(ctx, domain)
}

func (s *TenantService) List(ctx context.Context) ([]*tenant.Tenant, error) {
	return s.repo.List(ctx)
}

func (s *TenantService) Create(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("tenant.created", created)
	return created, nil
}
