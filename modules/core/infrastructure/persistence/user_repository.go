package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/greenweave/greenweave/modules/core/domain/aggregates/user"
	"github.com/greenweave/greenweave/modules/core/infrastructure/persistence/models"
	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/mapping"
)

const userFindQuery = `
	SELECT id, tenant_id, email, first_name, last_name, role, organization, created_at, updated_at
	FROM users`

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	users, err := r.queryUsers(ctx, userFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, user.ErrNotFound
	}
	return users[0], nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	users, err := r.queryUsers(ctx, userFindQuery+" WHERE email = $1", email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, user.ErrNotFound
	}
	return users[0], nil
}

func (r *UserRepository) ListByOrganization(ctx context.Context, organization string) ([]*user.User, error) {
	return r.queryUsers(ctx, userFindQuery+" WHERE organization = $1 ORDER BY email", organization)
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
		INSERT INTO users (id, tenant_id, email, first_name, last_name, role, organization, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		u.ID().String(),
		u.TenantID().String(),
		u.Email(),
		mapping.ValueToSQLNullString(u.FirstName()),
		mapping.ValueToSQLNullString(u.LastName()),
		string(u.Role()),
		mapping.ValueToSQLNullString(u.Organization()),
		u.CreatedAt(),
		u.UpdatedAt(),
	).Scan(&idStr); err != nil {
		return nil, errors.Wrap(err, "failed to insert user")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, role = $4, organization = $5, updated_at = $6
		WHERE id = $7
		RETURNING id
	`
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		u.Email(),
		mapping.ValueToSQLNullString(u.FirstName()),
		mapping.ValueToSQLNullString(u.LastName()),
		string(u.Role()),
		mapping.ValueToSQLNullString(u.Organization()),
		u.UpdatedAt(),
		u.ID().String(),
	).Scan(&idStr); err != nil {
		return nil, errors.Wrap(err, "failed to update user")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	return err
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var m models.User
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.Email,
			&m.FirstName,
			&m.LastName,
			&m.Role,
			&m.Organization,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user row")
		}
		users = append(users, toDomainUser(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return users, nil
}

func toDomainUser(m *models.User) *user.User {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		id = uuid.Nil
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		tenantID = uuid.Nil
	}
	return user.New(
		m.Email,
		user.Role(m.Role),
		user.WithID(id),
		user.WithTenantID(tenantID),
		user.WithName(mapping.SQLNullStringToValue(m.FirstName), mapping.SQLNullStringToValue(m.LastName)),
		user.WithOrganization(mapping.SQLNullStringToValue(m.Organization)),
		user.WithCreatedAt(m.CreatedAt),
		user.WithUpdatedAt(m.UpdatedAt),
	)
}
