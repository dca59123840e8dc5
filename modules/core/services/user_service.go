package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/greenweave/greenweave/modules/core/domain/aggregates/user"
	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) ListByOrganization(ctx context.Context, organization string) ([]*user.User, error) {
	return s.repo.ListByOrganization(ctx, organization)
}

func (s *UserService) Create(ctx context.Context, u *user.User) (*user.User, error) {
	var created *user.User
	execute := func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, u)
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

	s.publisher.Publish("user.created", created)
	return created, nil
}

func (s *UserService) Update(ctx context.Context, u *user.User) (*user.User, error) {
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("user.updated", updated)
	return updated, nil
}
