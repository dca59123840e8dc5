package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/greenweave/greenweave/modules/organization/domain/organization"
	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

type OrganizationService struct {
	repo      organization.Repository
	publisher eventbus.EventBus
}

func NewOrganizationService(repo organization.Repository, publisher eventbus.EventBus) *OrganizationService {
	return &OrganizationService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrganizationService) GetByName(ctx context.Context, name string) (*organization.Organization, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *OrganizationService) List(ctx context.Context) ([]*organization.Organization, error) {
	return s.repo.List(ctx)
}

// Create writes the organization and its sub-records in one transaction.
func (s *OrganizationService) Create(ctx context.Context, o *organization.Organization) (*organization.Organization, error) {
	var created *organization.Organization
	execute := func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, o)
		return err
	}

	var err error
	if _, poolErr := composables.UsePool(ctx); poolErr != nil {
		err = execute(ctx)
	} else {
		err = composables.InTx(ctx, execute)
	}
	if err != nil {
		return nil, err
	}

	s.publisher.Publish("organization.created", created)
	return created, nil
}

func (s *OrganizationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish("organization.deleted", id)
	return nil
}
