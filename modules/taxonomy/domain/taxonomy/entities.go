package taxonomy

import "fmt"

// Kind enumerates the taxonomy levels. Sectors through issues are
// structural nodes; criteria and indicators are reusable leaves.
type Kind string

const (
	KindSector    Kind = "sector"
	KindSubsector Kind = "subsector"
	KindStandard  Kind = "standard"
	KindIssue     Kind = "issue"
	KindCriteria  Kind = "criteria"
	KindIndicator Kind = "indicator"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSector, KindSubsector, KindStandard, KindIssue, KindCriteria, KindIndicator:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown taxonomy kind %q", s)
}

type IndicatorKind string

const (
	IndicatorPrimary    IndicatorKind = "primary"
	IndicatorCalculated IndicatorKind = "calculated"
)

type Axis string

const (
	AxisEnvironment Axis = "environment"
	AxisSocial      Axis = "social"
	AxisGovernance  Axis = "governance"
)

type Aggregation string

const (
	AggregationSum       Aggregation = "sum"
	AggregationLastMonth Aggregation = "last_month"
	AggregationAverage   Aggregation = "average"
	AggregationMax       Aggregation = "max"
	AggregationMin       Aggregation = "min"
)

type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

// Sector is a top-level industry classification node, unique by name.
type Sector struct {
	Name string
}

// Subsector refines a sector, unique by name.
type Subsector struct {
	Name       string
	SectorName string
}

// Standard is a named certification or reporting framework.
type Standard struct {
	Code string
	Name string
}

// Issue is an ESG topic area.
type Issue struct {
	Code string
	Name string
}

// Criteria is an evaluation dimension under an issue. Criteria are shared
// reference data and may be linked under many issues.
type Criteria struct {
	Code        string
	Name        string
	Description string
}

// Indicator is a measurable metric under a criteria.
type Indicator struct {
	Code        string
	Name        string
	Unit        string
	Kind        IndicatorKind
	Axis        Axis
	Aggregation Aggregation
	Frequency   Frequency
}

// Entry is the flattened list-rendering view of any taxonomy entity.
type Entry struct {
	Code        string
	Name        string
	Description string
}
