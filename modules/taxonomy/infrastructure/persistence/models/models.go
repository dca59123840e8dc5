package models

import "database/sql"

type Entry struct {
	Code        string
	Name        string
	Description sql.NullString
}

type Subsector struct {
	Name       string
	SectorName string
}

type Indicator struct {
	Code        string
	Name        string
	Unit        sql.NullString
	Kind        string
	Axis        string
	Aggregation string
	Frequency   string
}
