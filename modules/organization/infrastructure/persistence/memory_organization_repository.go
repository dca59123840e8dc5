package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/greenweave/greenweave/modules/organization/domain/organization"
)

// MemoryOrganizationRepository backs tests with an in-memory
// organization.Repository.
type MemoryOrganizationRepository struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]*organization.Organization
}

func NewMemoryOrganizationRepository() *MemoryOrganizationRepository {
	return &MemoryOrganizationRepository{orgs: make(map[uuid.UUID]*organization.Organization)}
}

func (r *MemoryOrganizationRepository) GetByID(_ context.Context, id uuid.UUID) (*organization.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if o, ok := r.orgs[id]; ok {
		return o, nil
	}
	return nil, organization.ErrNotFound
}

func (r *MemoryOrganizationRepository) GetByName(_ context.Context, name string) (*organization.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orgs {
		if o.Name() == name {
			return o, nil
		}
	}
	return nil, organization.ErrNotFound
}

func (r *MemoryOrganizationRepository) List(_ context.Context) ([]*organization.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*organization.Organization, 0, len(r.orgs))
	for _, o := range r.orgs {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *MemoryOrganizationRepository) Create(_ context.Context, o *organization.Organization) (*organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orgs {
		if existing.Name() == o.Name() {
			return nil, fmt.Errorf("organization %q already exists", o.Name())
		}
	}
	r.orgs[o.ID()] = o
	return o, nil
}

func (r *MemoryOrganizationRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orgs, id)
	return nil
}
