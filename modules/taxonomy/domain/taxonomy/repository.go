package taxonomy

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookup methods when no entry matches.
var ErrNotFound = errors.New("taxonomy entry not found")

// Repository is the access layer over the shared taxonomy reference tables
// and their junction records. Shared reference data is append-only through
// this interface: entries are created and linked, never removed.
type Repository interface {
	// Names returns the full unscoped name corpus for a level, across all
	// organizations. The duplicate guard runs against this corpus.
	Names(ctx context.Context, kind Kind) ([]string, error)

	FindByName(ctx context.Context, kind Kind, name string) (*Entry, error)
	FindByCode(ctx context.Context, kind Kind, code string) (*Entry, error)

	Sectors(ctx context.Context) ([]Sector, error)
	Subsectors(ctx context.Context, sectorName string) ([]Subsector, error)
	Indicator(ctx context.Context, code string) (*Indicator, error)

	CreateSector(ctx context.Context, s Sector) error
	CreateSubsector(ctx context.Context, s Subsector) error
	CreateStandard(ctx context.Context, s Standard) error
	CreateIssue(ctx context.Context, i Issue) error
	CreateCriteria(ctx context.Context, c Criteria) error
	CreateIndicator(ctx context.Context, i Indicator) error

	// LinkChild appends the child code to the junction record for the scope
	// tuple, creating the record when absent. The append is idempotent and
	// atomic at the storage layer: linking the same (scope, code) pair twice
	// leaves a single occurrence.
	LinkChild(ctx context.Context, level Kind, scope Scope, code string) error

	// Children resolves the junction record for the scope tuple into entries,
	// preserving code-array order. A missing junction record yields an empty
	// slice, not an error.
	Children(ctx context.Context, level Kind, scope Scope) ([]Entry, error)
}
