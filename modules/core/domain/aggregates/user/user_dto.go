package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/greenweave/greenweave/pkg/constants"
	"github.com/greenweave/greenweave/pkg/intl"
	"github.com/greenweave/greenweave/pkg/serrors"
)

type CreateDTO struct {
	Email        string `json:"email" validate:"required,email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role" validate:"required,oneof=admin contributor validator auditor"`
	Organization string `json:"organization" validate:"required"`
}

func (d *CreateDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Role = strings.TrimSpace(d.Role)
	d.Organization = strings.TrimSpace(d.Organization)
}

func (d *CreateDTO) Ok(ctx context.Context) (map[string]string, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return map[string]string{}, true
	}

	validationErrors := make(serrors.ValidationErrors)
	validatorErrs := errs.(validator.ValidationErrors)
	getFieldLocaleKey := func(field string) string {
		switch field {
		case "Email", "FirstName", "LastName", "Role", "Organization":
			return fmt.Sprintf("Users.Fields.%s", field)
		default:
			return ""
		}
	}
	for field, err := range serrors.ProcessValidatorErrors(validatorErrs, getFieldLocaleKey) {
		validationErrors[field] = err
	}

	return serrors.LocalizeValidationErrors(validationErrors, intl.UseLocalizer(ctx)), false
}

// ToEntity builds the user aggregate from a validated DTO.
func (d *CreateDTO) ToEntity() (*User, error) {
	role, err := NewRole(d.Role)
	if err != nil {
		return nil, err
	}
	return New(
		d.Email,
		role,
		WithName(d.FirstName, d.LastName),
		WithOrganization(d.Organization),
	), nil
}
