package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/greenweave/greenweave/modules/core/domain/aggregates/user"
)

// MemoryUserRepository backs tests with an in-memory user.Repository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*user.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]*user.User)}
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *MemoryUserRepository) ListByOrganization(_ context.Context, organization string) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*user.User
	for _, u := range r.users {
		if u.Organization() == organization {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email() < out[j].Email() })
	return out, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email() == u.Email() {
			return nil, fmt.Errorf("user %q already exists", u.Email())
		}
	}
	r.users[u.ID()] = u
	return u, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; !ok {
		return nil, user.ErrNotFound
	}
	r.users[u.ID()] = u
	return u, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}
