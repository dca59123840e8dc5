package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/modules/taxonomy/infrastructure/persistence/models"
	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/mapping"
)

type entityTable struct {
	table       string
	codeColumn  string
	nameColumn  string
	description bool
}

var entityTables = map[taxonomy.Kind]entityTable{
	taxonomy.KindSector:    {table: "sectors", codeColumn: "name", nameColumn: "name"},
	taxonomy.KindSubsector: {table: "subsectors", codeColumn: "name", nameColumn: "name"},
	taxonomy.KindStandard:  {table: "standards", codeColumn: "code", nameColumn: "name"},
	taxonomy.KindIssue:     {table: "issues", codeColumn: "code", nameColumn: "name"},
	taxonomy.KindCriteria:  {table: "criteria", codeColumn: "code", nameColumn: "name", description: true},
	taxonomy.KindIndicator: {table: "indicators", codeColumn: "code", nameColumn: "name"},
}

type junctionTable struct {
	table       string
	arrayColumn string
	scopeCols   []string
}

var junctionTables = map[taxonomy.Kind]junctionTable{
	taxonomy.KindStandard: {
		table:       "scope_standards",
		arrayColumn: "standard_codes",
		scopeCols:   []string{"scope_kind", "scope_name"},
	},
	taxonomy.KindIssue: {
		table:       "standard_issues",
		arrayColumn: "issue_codes",
		scopeCols:   []string{"scope_kind", "scope_name", "standard_name"},
	},
	taxonomy.KindCriteria: {
		table:       "issue_criteria",
		arrayColumn: "criteria_codes",
		scopeCols:   []string{"scope_kind", "scope_name", "standard_name", "issue_name"},
	},
	taxonomy.KindIndicator: {
		table:       "criteria_indicators",
		arrayColumn: "indicator_codes",
		scopeCols:   []string{"scope_kind", "scope_name", "standard_name", "issue_name", "criteria_name"},
	},
}

func scopeArgs(level taxonomy.Kind, scope taxonomy.Scope) []any {
	args := []any{string(scope.Kind), scope.Name}
	switch level {
	case taxonomy.KindIssue:
		args = append(args, scope.Standard)
	case taxonomy.KindCriteria:
		args = append(args, scope.Standard, scope.Issue)
	case taxonomy.KindIndicator:
		args = append(args, scope.Standard, scope.Issue, scope.Criteria)
	}
	return args
}

type TaxonomyRepository struct{}

func NewTaxonomyRepository() taxonomy.Repository {
	return &TaxonomyRepository{}
}

func (r *TaxonomyRepository) Names(ctx context.Context, kind taxonomy.Kind) ([]string, error) {
	et, ok := entityTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown taxonomy kind %q", kind)
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", et.nameColumn, et.table, et.nameColumn)
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch name corpus")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan name")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *TaxonomyRepository) FindByName(ctx context.Context, kind taxonomy.Kind, name string) (*taxonomy.Entry, error) {
	return r.findBy(ctx, kind, "name", name)
}

func (r *TaxonomyRepository) FindByCode(ctx context.Context, kind taxonomy.Kind, code string) (*taxonomy.Entry, error) {
	return r.findBy(ctx, kind, "code", code)
}

func (r *TaxonomyRepository) findBy(ctx context.Context, kind taxonomy.Kind, by, value string) (*taxonomy.Entry, error) {
	et, ok := entityTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown taxonomy kind %q", kind)
	}
	column := et.nameColumn
	if by == "code" {
		column = et.codeColumn
	}

	descExpr := "NULL"
	if et.description {
		descExpr = "description"
	}
	query := fmt.Sprintf(
		"SELECT %s, %s, %s FROM %s WHERE %s = $1",
		et.codeColumn, et.nameColumn, descExpr, et.table, column,
	)

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	var row models.Entry
	if err := tx.QueryRow(ctx, query, value).Scan(&row.Code, &row.Name, &row.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, taxonomy.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to fetch taxonomy entry")
	}
	return toDomainEntry(&row), nil
}

func (r *TaxonomyRepository) Sectors(ctx context.Context) ([]taxonomy.Sector, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, "SELECT name FROM sectors ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch sectors")
	}
	defer rows.Close()

	var sectors []taxonomy.Sector
	for rows.Next() {
		var s taxonomy.Sector
		if err := rows.Scan(&s.Name); err != nil {
			return nil, errors.Wrap(err, "failed to scan sector")
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}

func (r *TaxonomyRepository) Subsectors(ctx context.Context, sectorName string) ([]taxonomy.Subsector, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx,
		"SELECT name, sector_name FROM subsectors WHERE sector_name = $1 ORDER BY name", sectorName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch subsectors")
	}
	defer rows.Close()

	var subsectors []taxonomy.Subsector
	for rows.Next() {
		var s models.Subsector
		if err := rows.Scan(&s.Name, &s.SectorName); err != nil {
			return nil, errors.Wrap(err, "failed to scan subsector")
		}
		subsectors = append(subsectors, taxonomy.Subsector{Name: s.Name, SectorName: s.SectorName})
	}
	return subsectors, rows.Err()
}

func (r *TaxonomyRepository) Indicator(ctx context.Context, code string) (*taxonomy.Indicator, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	var row models.Indicator
	err = tx.QueryRow(ctx,
		"SELECT code, name, unit, kind, axis, aggregation, frequency FROM indicators WHERE code = $1",
		code,
	).Scan(&row.Code, &row.Name, &row.Unit, &row.Kind, &row.Axis, &row.Aggregation, &row.Frequency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, taxonomy.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to fetch indicator")
	}
	return toDomainIndicator(&row), nil
}

func (r *TaxonomyRepository) CreateSector(ctx context.Context, s taxonomy.Sector) error {
	return r.exec(ctx, "INSERT INTO sectors (name) VALUES ($1)", s.Name)
}

func (r *TaxonomyRepository) CreateSubsector(ctx context.Context, s taxonomy.Subsector) error {
	return r.exec(ctx, "INSERT INTO subsectors (name, sector_name) VALUES ($1, $2)", s.Name, s.SectorName)
}

func (r *TaxonomyRepository) CreateStandard(ctx context.Context, s taxonomy.Standard) error {
	return r.exec(ctx, "INSERT INTO standards (code, name) VALUES ($1, $2)", s.Code, s.Name)
}

func (r *TaxonomyRepository) CreateIssue(ctx context.Context, i taxonomy.Issue) error {
	return r.exec(ctx, "INSERT INTO issues (code, name) VALUES ($1, $2)", i.Code, i.Name)
}

func (r *TaxonomyRepository) CreateCriteria(ctx context.Context, c taxonomy.Criteria) error {
	return r.exec(ctx,
		"INSERT INTO criteria (code, name, description) VALUES ($1, $2, $3)",
		c.Code, c.Name, mapping.ValueToSQLNullString(c.Description))
}

func (r *TaxonomyRepository) CreateIndicator(ctx context.Context, i taxonomy.Indicator) error {
	return r.exec(ctx,
		`INSERT INTO indicators (code, name, unit, kind, axis, aggregation, frequency)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		i.Code, i.Name, mapping.ValueToSQLNullString(i.Unit),
		string(i.Kind), string(i.Axis), string(i.Aggregation), string(i.Frequency))
}

// LinkChild is a single conditional upsert: the row is created with a
// one-element array, or the code is appended only when absent. This keeps
// concurrent links for the same scope tuple from dropping or duplicating
// codes.
func (r *TaxonomyRepository) LinkChild(ctx context.Context, level taxonomy.Kind, scope taxonomy.Scope, code string) error {
	jt, ok := junctionTables[level]
	if !ok {
		return fmt.Errorf("kind %q has no junction table", level)
	}
	if err := scope.Validate(level); err != nil {
		return err
	}

	placeholders := make([]string, len(jt.scopeCols))
	for i := range jt.scopeCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	conflictCols := strings.Join(jt.scopeCols, ", ")
	codeParam := fmt.Sprintf("$%d", len(jt.scopeCols)+1)

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s)
		VALUES (%[4]s, ARRAY[%[5]s::text])
		ON CONFLICT (%[2]s) DO UPDATE SET %[3]s = CASE
			WHEN %[5]s::text = ANY (%[1]s.%[3]s) THEN %[1]s.%[3]s
			ELSE array_append(%[1]s.%[3]s, %[5]s::text)
		END`,
		jt.table,
		conflictCols,
		jt.arrayColumn,
		strings.Join(placeholders, ", "),
		codeParam,
	)

	args := append(scopeArgs(level, scope), code)
	return r.exec(ctx, query, args...)
}

func (r *TaxonomyRepository) Children(ctx context.Context, level taxonomy.Kind, scope taxonomy.Scope) ([]taxonomy.Entry, error) {
	jt, ok := junctionTables[level]
	if !ok {
		return nil, fmt.Errorf("kind %q has no junction table", level)
	}
	if err := scope.Validate(level); err != nil {
		return nil, err
	}
	et := entityTables[level]

	conds := make([]string, len(jt.scopeCols))
	for i, col := range jt.scopeCols {
		conds[i] = fmt.Sprintf("j.%s = $%d", col, i+1)
	}
	where := strings.Join(conds, " AND ")

	descExpr := "NULL"
	if et.description {
		descExpr = "e.description"
	}
	query := fmt.Sprintf(`
		SELECT e.%s, e.%s, %s
		FROM %s j
		CROSS JOIN LATERAL unnest(j.%s) WITH ORDINALITY AS c(code, ord)
		JOIN %s e ON e.%s = c.code
		WHERE %s
		ORDER BY c.ord`,
		et.codeColumn, et.nameColumn, descExpr,
		jt.table,
		jt.arrayColumn,
		et.table, et.codeColumn,
		where,
	)

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, scopeArgs(level, scope)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch children")
	}
	defer rows.Close()

	entries := make([]taxonomy.Entry, 0)
	for rows.Next() {
		var row models.Entry
		if err := rows.Scan(&row.Code, &row.Name, &row.Description); err != nil {
			return nil, errors.Wrap(err, "failed to scan entry")
		}
		entries = append(entries, *toDomainEntry(&row))
	}
	return entries, rows.Err()
}

func (r *TaxonomyRepository) exec(ctx context.Context, query string, args ...any) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to execute statement")
	}
	return nil
}
