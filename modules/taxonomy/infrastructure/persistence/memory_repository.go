package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
)

// MemoryTaxonomyRepository is a mutex-guarded in-memory implementation of
// taxonomy.Repository. It backs unit tests and the seed tool's dry-run mode
// with the same conditional-append junction semantics as the SQL layer.
type MemoryTaxonomyRepository struct {
	mu sync.RWMutex

	entries    map[taxonomy.Kind]map[string]taxonomy.Entry // by code
	subsectors map[string]taxonomy.Subsector
	indicators map[string]taxonomy.Indicator
	junctions  map[junctionKey][]string
}

type junctionKey struct {
	level taxonomy.Kind
	scope taxonomy.Scope
}

func NewMemoryTaxonomyRepository() *MemoryTaxonomyRepository {
	entries := make(map[taxonomy.Kind]map[string]taxonomy.Entry)
	for _, kind := range []taxonomy.Kind{
		taxonomy.KindSector, taxonomy.KindSubsector, taxonomy.KindStandard,
		taxonomy.KindIssue, taxonomy.KindCriteria, taxonomy.KindIndicator,
	} {
		entries[kind] = make(map[string]taxonomy.Entry)
	}
	return &MemoryTaxonomyRepository{
		entries:    entries,
		subsectors: make(map[string]taxonomy.Subsector),
		indicators: make(map[string]taxonomy.Indicator),
		junctions:  make(map[junctionKey][]string),
	}
}

func (r *MemoryTaxonomyRepository) Names(_ context.Context, kind taxonomy.Kind) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.entries[kind]
	if !ok {
		return nil, fmt.Errorf("unknown taxonomy kind %q", kind)
	}
	names := make([]string, 0, len(table))
	for _, e := range table {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *MemoryTaxonomyRepository) FindByName(_ context.Context, kind taxonomy.Kind, name string) (*taxonomy.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries[kind] {
		if e.Name == name {
			entry := e
			return &entry, nil
		}
	}
	return nil, taxonomy.ErrNotFound
}

func (r *MemoryTaxonomyRepository) FindByCode(_ context.Context, kind taxonomy.Kind, code string) (*taxonomy.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[kind][code]; ok {
		entry := e
		return &entry, nil
	}
	return nil, taxonomy.ErrNotFound
}

func (r *MemoryTaxonomyRepository) Sectors(_ context.Context) ([]taxonomy.Sector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sectors := make([]taxonomy.Sector, 0, len(r.entries[taxonomy.KindSector]))
	for _, e := range r.entries[taxonomy.KindSector] {
		sectors = append(sectors, taxonomy.Sector{Name: e.Name})
	}
	sort.Slice(sectors, func(i, j int) bool { return sectors[i].Name < sectors[j].Name })
	return sectors, nil
}

func (r *MemoryTaxonomyRepository) Subsectors(_ context.Context, sectorName string) ([]taxonomy.Subsector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []taxonomy.Subsector
	for _, s := range r.subsectors {
		if s.SectorName == sectorName {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryTaxonomyRepository) Indicator(_ context.Context, code string) (*taxonomy.Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ind, ok := r.indicators[code]; ok {
		out := ind
		return &out, nil
	}
	return nil, taxonomy.ErrNotFound
}

func (r *MemoryTaxonomyRepository) CreateSector(_ context.Context, s taxonomy.Sector) error {
	return r.insert(taxonomy.KindSector, taxonomy.Entry{Code: s.Name, Name: s.Name})
}

func (r *MemoryTaxonomyRepository) CreateSubsector(_ context.Context, s taxonomy.Subsector) error {
	if err := r.insert(taxonomy.KindSubsector, taxonomy.Entry{Code: s.Name, Name: s.Name}); err != nil {
		return err
	}
	r.mu.Lock()
	r.subsectors[s.Name] = s
	r.mu.Unlock()
	return nil
}

func (r *MemoryTaxonomyRepository) CreateStandard(_ context.Context, s taxonomy.Standard) error {
	return r.insert(taxonomy.KindStandard, taxonomy.Entry{Code: s.Code, Name: s.Name})
}

func (r *MemoryTaxonomyRepository) CreateIssue(_ context.Context, i taxonomy.Issue) error {
	return r.insert(taxonomy.KindIssue, taxonomy.Entry{Code: i.Code, Name: i.Name})
}

func (r *MemoryTaxonomyRepository) CreateCriteria(_ context.Context, c taxonomy.Criteria) error {
	return r.insert(taxonomy.KindCriteria, taxonomy.Entry{Code: c.Code, Name: c.Name, Description: c.Description})
}

func (r *MemoryTaxonomyRepository) CreateIndicator(_ context.Context, i taxonomy.Indicator) error {
	if err := r.insert(taxonomy.KindIndicator, taxonomy.Entry{Code: i.Code, Name: i.Name}); err != nil {
		return err
	}
	r.mu.Lock()
	r.indicators[i.Code] = i
	r.mu.Unlock()
	return nil
}

func (r *MemoryTaxonomyRepository) insert(kind taxonomy.Kind, e taxonomy.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[kind][e.Code]; exists {
		return fmt.Errorf("%s %q already exists", kind, e.Code)
	}
	r.entries[kind][e.Code] = e
	return nil
}

func (r *MemoryTaxonomyRepository) LinkChild(_ context.Context, level taxonomy.Kind, scope taxonomy.Scope, code string) error {
	if _, ok := junctionTables[level]; !ok {
		return fmt.Errorf("kind %q has no junction table", level)
	}
	if err := scope.Validate(level); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := junctionKey{level: level, scope: normalizeScope(level, scope)}
	for _, existing := range r.junctions[key] {
		if existing == code {
			return nil
		}
	}
	r.junctions[key] = append(r.junctions[key], code)
	return nil
}

func (r *MemoryTaxonomyRepository) Children(_ context.Context, level taxonomy.Kind, scope taxonomy.Scope) ([]taxonomy.Entry, error) {
	if _, ok := junctionTables[level]; !ok {
		return nil, fmt.Errorf("kind %q has no junction table", level)
	}
	if err := scope.Validate(level); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	key := junctionKey{level: level, scope: normalizeScope(level, scope)}
	codes := r.junctions[key]
	entries := make([]taxonomy.Entry, 0, len(codes))
	for _, code := range codes {
		if e, ok := r.entries[level][code]; ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// normalizeScope zeroes the tuple fields beyond the prefix relevant to the
// level, so equivalent scopes hash to the same junction key.
func normalizeScope(level taxonomy.Kind, scope taxonomy.Scope) taxonomy.Scope {
	switch level {
	case taxonomy.KindStandard:
		scope.Standard, scope.Issue, scope.Criteria = "", "", ""
	case taxonomy.KindIssue:
		scope.Issue, scope.Criteria = "", ""
	case taxonomy.KindCriteria:
		scope.Criteria = ""
	}
	return scope
}
