package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/dedup"
	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

// ServiceError carries an HTTP status and a stable machine code alongside the
// human message, so controllers can map failures without string matching.
type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

// AddEntryCommand describes one add-and-link request: the entry to create (or
// reuse) at the given level, and the scope tuple it should be linked under.
// Scope is ignored for sectors and subsectors, which are not junction-linked.
type AddEntryCommand struct {
	Kind        taxonomy.Kind
	Name        string
	Description string
	Scope       taxonomy.Scope

	// SectorName applies to subsector entries only.
	SectorName string

	// Indicator metadata, consulted when Kind is KindIndicator.
	Unit        string
	Metric      taxonomy.IndicatorKind
	Axis        taxonomy.Axis
	Aggregation taxonomy.Aggregation
	Frequency   taxonomy.Frequency
}

// AddEntryResult reports what the add operation did.
type AddEntryResult struct {
	Entry   taxonomy.Entry
	Reused  bool
	Blocked bool
	Matches []dedup.Match
}

type TaxonomyService struct {
	repo      taxonomy.Repository
	guard     *dedup.Guard
	publisher eventbus.EventBus
}

func NewTaxonomyService(repo taxonomy.Repository, guard *dedup.Guard, publisher eventbus.EventBus) *TaxonomyService {
	return &TaxonomyService{
		repo:      repo,
		guard:     guard,
		publisher: publisher,
	}
}

// Names returns the unscoped name corpus for a level.
func (s *TaxonomyService) Names(ctx context.Context, kind taxonomy.Kind) ([]string, error) {
	return s.repo.Names(ctx, kind)
}

// Sectors lists all sectors.
func (s *TaxonomyService) Sectors(ctx context.Context) ([]taxonomy.Sector, error) {
	return s.repo.Sectors(ctx)
}

// Subsectors lists the subsectors refining a sector.
func (s *TaxonomyService) Subsectors(ctx context.Context, sectorName string) ([]taxonomy.Subsector, error) {
	return s.repo.Subsectors(ctx, sectorName)
}

// Indicator fetches one indicator with its full metadata.
func (s *TaxonomyService) Indicator(ctx context.Context, code string) (*taxonomy.Indicator, error) {
	ind, err := s.repo.Indicator(ctx, code)
	if err != nil {
		return nil, mapPgError(err)
	}
	return ind, nil
}

// Children lists the entries linked under the scope tuple at the given level,
// in link order. A scope nobody has linked under yet yields an empty slice.
func (s *TaxonomyService) Children(ctx context.Context, level taxonomy.Kind, scope taxonomy.Scope) ([]taxonomy.Entry, error) {
	entries, err := s.repo.Children(ctx, level, scope)
	if err != nil {
		return nil, mapPgError(err)
	}
	return entries, nil
}

// AddEntry runs the full add pipeline: duplicate guard first, then entity
// creation (or reuse by name) and junction linking in one transaction. The
// confirm callback resolves ambiguous similarity matches; when the guard
// declines the add, the result carries Blocked with the match list and no
// entity is written.
func (s *TaxonomyService) AddEntry(ctx context.Context, cmd AddEntryCommand, confirm dedup.ConfirmFunc) (*AddEntryResult, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, newServiceError(http.StatusBadRequest, "TAXONOMY_NAME_REQUIRED", "name is required", nil)
	}
	cmd.Name = name

	// Junction-linked kinds need a well-formed scope before anything is
	// written, so a bad tuple cannot leave an entity created but unlinked.
	switch cmd.Kind {
	case taxonomy.KindSector, taxonomy.KindSubsector:
	default:
		if err := cmd.Scope.Validate(cmd.Kind); err != nil {
			return nil, newServiceError(http.StatusBadRequest, "TAXONOMY_INVALID_SCOPE", err.Error(), nil)
		}
	}

	var collected []dedup.Match
	wrapped := func(ctx context.Context, candidate string, matches []dedup.Match) (bool, error) {
		collected = matches
		if confirm == nil {
			return true, nil
		}
		return confirm(ctx, candidate, matches)
	}

	ok, err := s.guard.ValidateAdd(ctx, cmd.Kind, name, wrapped)
	if err != nil {
		if errors.Is(err, dedup.ErrAlreadyExists) {
			recordDedupDecision(string(cmd.Kind), "blocked")
			return nil, err
		}
		return nil, errors.Wrap(err, "duplicate guard failed")
	}
	if !ok {
		recordDedupDecision(string(cmd.Kind), "rejected_by_user")
		return &AddEntryResult{Blocked: true, Matches: collected}, nil
	}
	if len(collected) > 0 {
		recordDedupDecision(string(cmd.Kind), "confirmed")
	}

	var result *AddEntryResult
	execute := func(ctx context.Context) error {
		var execErr error
		result, execErr = s.addAndLink(ctx, cmd)
		return execErr
	}

	// Memory-backed repositories carry no pool in context and handle their
	// own consistency.
	if _, poolErr := composables.UsePool(ctx); poolErr != nil {
		err = execute(ctx)
	} else {
		err = composables.InTx(ctx, execute)
	}
	if err != nil {
		return nil, err
	}

	if !result.Reused {
		s.publisher.Publish(fmt.Sprintf("taxonomy.%s.created", cmd.Kind), result.Entry)
	}
	return result, nil
}

func (s *TaxonomyService) addAndLink(ctx context.Context, cmd AddEntryCommand) (*AddEntryResult, error) {
	entry, reused, err := s.ensureEntity(ctx, cmd)
	if err != nil {
		return nil, err
	}

	switch cmd.Kind {
	case taxonomy.KindSector, taxonomy.KindSubsector:
		// Not junction-linked.
	default:
		if err := s.repo.LinkChild(ctx, cmd.Kind, cmd.Scope, entry.Code); err != nil {
			return nil, mapPgError(err)
		}
	}

	return &AddEntryResult{Entry: *entry, Reused: reused}, nil
}

// ensureEntity reuses an existing entity when the name already exists at the
// level, otherwise creates one under a name-derived code. A code collision
// with a differently named entity is a conflict, never a silent reuse.
func (s *TaxonomyService) ensureEntity(ctx context.Context, cmd AddEntryCommand) (*taxonomy.Entry, bool, error) {
	if existing, err := s.repo.FindByName(ctx, cmd.Kind, cmd.Name); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, taxonomy.ErrNotFound) {
		return nil, false, mapPgError(err)
	}

	code := SynthesizeCode(cmd.Name)
	if byCode, err := s.repo.FindByCode(ctx, cmd.Kind, code); err == nil {
		if byCode.Name != cmd.Name {
			recordWriteConflict("code")
			return nil, false, newServiceError(
				http.StatusConflict,
				"TAXONOMY_CODE_CONFLICT",
				fmt.Sprintf("code %q is already taken by %q", code, byCode.Name),
				nil,
			)
		}
		return byCode, true, nil
	} else if !errors.Is(err, taxonomy.ErrNotFound) {
		return nil, false, mapPgError(err)
	}

	if err := s.createEntity(ctx, cmd, code); err != nil {
		return nil, false, mapPgError(err)
	}
	return &taxonomy.Entry{Code: code, Name: cmd.Name, Description: cmd.Description}, false, nil
}

func (s *TaxonomyService) createEntity(ctx context.Context, cmd AddEntryCommand, code string) error {
	switch cmd.Kind {
	case taxonomy.KindSector:
		return s.repo.CreateSector(ctx, taxonomy.Sector{Name: cmd.Name})
	case taxonomy.KindSubsector:
		return s.repo.CreateSubsector(ctx, taxonomy.Subsector{Name: cmd.Name, SectorName: cmd.SectorName})
	case taxonomy.KindStandard:
		return s.repo.CreateStandard(ctx, taxonomy.Standard{Code: code, Name: cmd.Name})
	case taxonomy.KindIssue:
		return s.repo.CreateIssue(ctx, taxonomy.Issue{Code: code, Name: cmd.Name})
	case taxonomy.KindCriteria:
		return s.repo.CreateCriteria(ctx, taxonomy.Criteria{Code: code, Name: cmd.Name, Description: cmd.Description})
	case taxonomy.KindIndicator:
		return s.repo.CreateIndicator(ctx, taxonomy.Indicator{
			Code:        code,
			Name:        cmd.Name,
			Unit:        cmd.Unit,
			Kind:        cmd.Metric,
			Axis:        cmd.Axis,
			Aggregation: cmd.Aggregation,
			Frequency:   cmd.Frequency,
		})
	}
	return fmt.Errorf("unknown taxonomy kind %q", cmd.Kind)
}

// SynthesizeCode derives an entity code from a display name: uppercase with
// all whitespace stripped.
func SynthesizeCode(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), ""))
}
