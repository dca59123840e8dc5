package mappers

import (
	"github.com/greenweave/greenweave/modules/taxonomy/domain/dedup"
	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/modules/taxonomy/domain/wizard"
	"github.com/greenweave/greenweave/modules/taxonomy/presentation/viewmodels"
)

func EntryToViewModel(e taxonomy.Entry) viewmodels.Entry {
	return viewmodels.Entry{
		Code:        e.Code,
		Name:        e.Name,
		Description: e.Description,
	}
}

func EntriesToViewModels(entries []taxonomy.Entry) []viewmodels.Entry {
	out := make([]viewmodels.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryToViewModel(e))
	}
	return out
}

func IndicatorToViewModel(i *taxonomy.Indicator) viewmodels.Indicator {
	return viewmodels.Indicator{
		Code:        i.Code,
		Name:        i.Name,
		Unit:        i.Unit,
		Kind:        string(i.Kind),
		Axis:        string(i.Axis),
		Aggregation: string(i.Aggregation),
		Frequency:   string(i.Frequency),
	}
}

func MatchesToViewModels(matches []dedup.Match) []viewmodels.Match {
	out := make([]viewmodels.Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, viewmodels.Match{Name: m.Name, Score: m.Score})
	}
	return out
}

func SessionToViewModel(s *wizard.Session) viewmodels.WizardState {
	return viewmodels.WizardState{
		Step:                int(s.Step()),
		StepName:            s.Step().String(),
		Sector:              s.Sector(),
		Subsector:           s.Subsector(),
		Standards:           s.Standards(),
		Issues:              s.Issues(),
		Criteria:            s.Criteria(),
		Indicators:          s.Indicators(),
		OrganizationCreated: s.OrganizationCreated(),
		UsersCreated:        s.UsersCreated(),
		Completed:           s.Completed(),
	}
}
