package models

import (
	"database/sql"
	"time"
)

type Organization struct {
	ID            string
	TenantID      string
	Name          string
	OrgType       string
	BusinessLines []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Subsidiary struct {
	OrganizationID string
	Name           string
	BusinessLine   sql.NullString
}

type Site struct {
	OrganizationID string
	Name           string
	Location       sql.NullString
}
