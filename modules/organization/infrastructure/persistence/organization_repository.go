package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/greenweave/greenweave/modules/organization/domain/organization"
	"github.com/greenweave/greenweave/modules/organization/infrastructure/persistence/models"
	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/mapping"
)

const orgFindQuery = `
	SELECT id, tenant_id, name, org_type, business_lines, created_at, updated_at
	FROM organizations`

type OrganizationRepository struct{}

func NewOrganizationRepository() organization.Repository {
	return &OrganizationRepository{}
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	orgs, err := r.queryOrganizations(ctx, orgFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, organization.ErrNotFound
	}
	return orgs[0], nil
}

func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*organization.Organization, error) {
	orgs, err := r.queryOrganizations(ctx, orgFindQuery+" WHERE name = $1", name)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, organization.ErrNotFound
	}
	return orgs[0], nil
}

func (r *OrganizationRepository) List(ctx context.Context) ([]*organization.Organization, error) {
	return r.queryOrganizations(ctx, orgFindQuery+" ORDER BY name")
}

func (r *OrganizationRepository) Create(ctx context.Context, o *organization.Organization) (*organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO organizations (id, tenant_id, name, org_type, business_lines, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(
		ctx,
		query,
		o.ID().String(),
		o.TenantID().String(),
		o.Name(),
		string(o.Type()),
		o.BusinessLines(),
		o.CreatedAt(),
		o.UpdatedAt(),
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert organization")
	}

	for _, sub := range o.Subsidiaries() {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO organization_subsidiaries (organization_id, name, business_line) VALUES ($1, $2, $3)`,
			o.ID().String(),
			sub.Name,
			mapping.ValueToSQLNullString(sub.BusinessLine),
		); err != nil {
			return nil, errors.Wrap(err, "failed to insert subsidiary")
		}
	}

	for _, site := range o.Sites() {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO organization_sites (organization_id, name, location) VALUES ($1, $2, $3)`,
			o.ID().String(),
			site.Name,
			mapping.ValueToSQLNullString(site.Location),
		); err != nil {
			return nil, errors.Wrap(err, "failed to insert site")
		}
	}

	return r.GetByID(ctx, o.ID())
}

func (r *OrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id.String())
	return err
}

func (r *OrganizationRepository) queryOrganizations(ctx context.Context, query string, args ...interface{}) ([]*organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var organizations []*organization.Organization
	for rows.Next() {
		var m models.Organization
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.Name,
			&m.OrgType,
			&m.BusinessLines,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan organization row")
		}
		org, err := r.hydrate(ctx, &m)
		if err != nil {
			return nil, err
		}
		organizations = append(organizations, org)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return organizations, nil
}

// hydrate loads the subsidiary and site sub-records and assembles the domain
// aggregate.
func (r *OrganizationRepository) hydrate(ctx context.Context, m *models.Organization) (*organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var subs []organization.Subsidiary
	rows, err := tx.Query(
		ctx,
		`SELECT name, business_line FROM organization_subsidiaries WHERE organization_id = $1 ORDER BY name`,
		m.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query subsidiaries")
	}
	for rows.Next() {
		var s models.Subsidiary
		if err := rows.Scan(&s.Name, &s.BusinessLine); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan subsidiary row")
		}
		subs = append(subs, organization.Subsidiary{
			Name:         s.Name,
			BusinessLine: mapping.SQLNullStringToValue(s.BusinessLine),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "subsidiary row iteration error")
	}

	var sites []organization.Site
	rows, err = tx.Query(
		ctx,
		`SELECT name, location FROM organization_sites WHERE organization_id = $1 ORDER BY name`,
		m.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sites")
	}
	for rows.Next() {
		var s models.Site
		if err := rows.Scan(&s.Name, &s.Location); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan site row")
		}
		sites = append(sites, organization.Site{
			Name:     s.Name,
			Location: mapping.SQLNullStringToValue(s.Location),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "site row iteration error")
	}

	return toDomainOrganization(m, subs, sites), nil
}

func toDomainOrganization(m *models.Organization, subs []organization.Subsidiary, sites []organization.Site) *organization.Organization {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		id = uuid.Nil
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		tenantID = uuid.Nil
	}
	return organization.New(
		m.Name,
		organization.Type(m.OrgType),
		organization.WithID(id),
		organization.WithTenantID(tenantID),
		organization.WithBusinessLines(m.BusinessLines),
		organization.WithSubsidiaries(subs),
		organization.WithSites(sites),
		organization.WithCreatedAt(m.CreatedAt),
		organization.WithUpdatedAt(m.UpdatedAt),
	)
}
