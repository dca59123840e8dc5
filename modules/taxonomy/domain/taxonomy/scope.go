package taxonomy

import "fmt"

// ScopeKind says whether the scope is rooted at a sector or a subsector.
type ScopeKind string

const (
	ScopeSector    ScopeKind = "sector"
	ScopeSubsector ScopeKind = "subsector"
)

// Scope is the composite tuple identifying one junction record. Only the
// prefix relevant to a level is consulted: standards are linked under
// (Kind, Name), issues under (Kind, Name, Standard), criteria under
// (Kind, Name, Standard, Issue) and indicators under the full tuple.
type Scope struct {
	Kind     ScopeKind
	Name     string
	Standard string
	Issue    string
	Criteria string
}

func SectorScope(sector string) Scope {
	return Scope{Kind: ScopeSector, Name: sector}
}

func SubsectorScope(subsector string) Scope {
	return Scope{Kind: ScopeSubsector, Name: subsector}
}

func (s Scope) WithStandard(standard string) Scope {
	s.Standard = standard
	return s
}

func (s Scope) WithIssue(issue string) Scope {
	s.Issue = issue
	return s
}

func (s Scope) WithCriteria(criteria string) Scope {
	s.Criteria = criteria
	return s
}

// Validate checks that the tuple prefix required for the given child level
// is fully populated.
func (s Scope) Validate(level Kind) error {
	if s.Name == "" {
		return fmt.Errorf("scope root name is required")
	}
	if s.Kind != ScopeSector && s.Kind != ScopeSubsector {
		return fmt.Errorf("invalid scope kind %q", s.Kind)
	}
	switch level {
	case KindStandard:
		return nil
	case KindIssue:
		if s.Standard == "" {
			return fmt.Errorf("standard is required to scope issues")
		}
		return nil
	case KindCriteria:
		if s.Standard == "" || s.Issue == "" {
			return fmt.Errorf("standard and issue are required to scope criteria")
		}
		return nil
	case KindIndicator:
		if s.Standard == "" || s.Issue == "" || s.Criteria == "" {
			return fmt.Errorf("standard, issue and criteria are required to scope indicators")
		}
		return nil
	}
	return fmt.Errorf("kind %q has no junction scope", level)
}
