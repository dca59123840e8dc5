package wizard

import (
	"fmt"
)

// Step enumerates the wizard pages in order.
type Step int

const (
	StepSector Step = iota + 1
	StepStandards
	StepIssues
	StepCriteria
	StepIndicators
	StepOrganization
	StepUsers

	FirstStep = StepSector
	LastStep  = StepUsers
)

func (s Step) String() string {
	switch s {
	case StepSector:
		return "sector"
	case StepStandards:
		return "standards"
	case StepIssues:
		return "issues"
	case StepCriteria:
		return "criteria"
	case StepIndicators:
		return "indicators"
	case StepOrganization:
		return "organization"
	case StepUsers:
		return "users"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Session is the ephemeral per-user wizard state. It lives in memory for
// the duration of one wizard run and is never persisted. Mutations happen
// exclusively through the methods below.
//
// Selections are ordered sets: membership is what matters, but insertion
// order is preserved for display.
type Session struct {
	step Step

	sector    string
	subsector string

	standards  *orderedSet
	issues     *orderedSet
	criteria   *orderedSet
	indicators *orderedSet

	organizationCreated bool
	usersCreated        bool
}

func NewSession() *Session {
	return &Session{
		step:       FirstStep,
		standards:  newOrderedSet(),
		issues:     newOrderedSet(),
		criteria:   newOrderedSet(),
		indicators: newOrderedSet(),
	}
}

func (s *Session) Step() Step           { return s.step }
func (s *Session) Sector() string       { return s.sector }
func (s *Session) Subsector() string    { return s.subsector }
func (s *Session) Standards() []string  { return s.standards.Values() }
func (s *Session) Issues() []string     { return s.issues.Values() }
func (s *Session) Criteria() []string   { return s.criteria.Values() }
func (s *Session) Indicators() []string { return s.indicators.Values() }

func (s *Session) OrganizationCreated() bool { return s.organizationCreated }
func (s *Session) UsersCreated() bool        { return s.usersCreated }

// SelectSector toggles the sector selection. Re-selecting the active sector
// clears it; picking a different sector replaces it. Either way the
// subsector is cleared since it belongs to the previous parent.
//
// Downstream standard/issue/criteria/indicator selections are intentionally
// NOT cleared on a sector change. See TestSelectSector_DoesNotCascadeBelowSubsector
// before changing this.
func (s *Session) SelectSector(name string) {
	if s.sector == name {
		s.sector = ""
	} else {
		s.sector = name
	}
	s.subsector = ""
}

// SelectSubsector toggles the subsector selection with no cascade.
func (s *Session) SelectSubsector(name string) {
	if s.subsector == name {
		s.subsector = ""
	} else {
		s.subsector = name
	}
}

func (s *Session) ToggleStandard(code string)  { s.standards.Toggle(code) }
func (s *Session) ToggleIssue(code string)     { s.issues.Toggle(code) }
func (s *Session) ToggleCriteria(code string)  { s.criteria.Toggle(code) }
func (s *Session) ToggleIndicator(code string) { s.indicators.Toggle(code) }

func (s *Session) MarkOrganizationCreated() { s.organizationCreated = true }
func (s *Session) MarkUsersCreated()        { s.usersCreated = true }

// Completed reports whether the wizard reached its terminal state.
func (s *Session) Completed() bool {
	return s.step == LastStep && s.usersCreated
}

// Guard returns the step the user must return to before the given step may
// render, or 0 when entry is allowed. Each step requires its predecessor's
// selection.
func (s *Session) Guard(step Step) Step {
	switch step {
	case StepSector:
		return 0
	case StepStandards:
		if s.sector == "" {
			return StepSector
		}
	case StepIssues:
		if s.standards.Len() == 0 {
			return StepStandards
		}
	case StepCriteria:
		if s.issues.Len() == 0 {
			return StepIssues
		}
	case StepIndicators:
		if s.criteria.Len() == 0 {
			return StepCriteria
		}
	case StepOrganization:
		if s.indicators.Len() == 0 {
			return StepIndicators
		}
	case StepUsers:
		if !s.organizationCreated {
			return StepOrganization
		}
	}
	return 0
}

// Advance moves to the next step when its guard allows it. It returns the
// step the session is on afterwards and whether the move happened.
func (s *Session) Advance() (Step, bool) {
	if s.step >= LastStep {
		return s.step, false
	}
	next := s.step + 1
	if redirect := s.Guard(next); redirect != 0 {
		return s.step, false
	}
	s.step = next
	return s.step, true
}

// Retreat moves one step back; moving before the first step is a no-op.
func (s *Session) Retreat() Step {
	if s.step > FirstStep {
		s.step--
	}
	return s.step
}

// GoTo jumps to a step when its guard allows it, otherwise moves to the
// step the guard redirects to.
func (s *Session) GoTo(step Step) Step {
	if step < FirstStep || step > LastStep {
		return s.step
	}
	if redirect := s.Guard(step); redirect != 0 {
		s.step = redirect
	} else {
		s.step = step
	}
	return s.step
}

// Reset returns the session to its initial state.
func (s *Session) Reset() {
	*s = *NewSession()
}

type orderedSet struct {
	values []string
	index  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: map[string]bool{}}
}

func (o *orderedSet) Toggle(v string) {
	if o.index[v] {
		delete(o.index, v)
		for i, existing := range o.values {
			if existing == v {
				o.values = append(o.values[:i], o.values[i+1:]...)
				break
			}
		}
		return
	}
	o.index[v] = true
	o.values = append(o.values, v)
}

func (o *orderedSet) Len() int { return len(o.values) }

func (o *orderedSet) Values() []string {
	out := make([]string, len(o.values))
	copy(out, o.values)
	return out
}
