package viewmodels

// Entry is the list-rendering view of any taxonomy entity.
type Entry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Indicator carries the full indicator metadata.
type Indicator struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Unit        string `json:"unit,omitempty"`
	Kind        string `json:"kind"`
	Axis        string `json:"axis"`
	Aggregation string `json:"aggregation"`
	Frequency   string `json:"frequency"`
}

// Match is a similar existing entry reported alongside a duplicate warning.
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// WizardState is the client view of one wizard session.
type WizardState struct {
	Step                int      `json:"step"`
	StepName            string   `json:"step_name"`
	Sector              string   `json:"sector,omitempty"`
	Subsector           string   `json:"subsector,omitempty"`
	Standards           []string `json:"standards"`
	Issues              []string `json:"issues"`
	Criteria            []string `json:"criteria"`
	Indicators          []string `json:"indicators"`
	OrganizationCreated bool     `json:"organization_created"`
	UsersCreated        bool     `json:"users_created"`
	Completed           bool     `json:"completed"`
}
