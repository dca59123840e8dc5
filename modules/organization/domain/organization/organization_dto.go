package organization

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/greenweave/greenweave/pkg/constants"
	"github.com/greenweave/greenweave/pkg/intl"
	"github.com/greenweave/greenweave/pkg/serrors"
)

type SubsidiaryDTO struct {
	Name         string `json:"name" validate:"required"`
	BusinessLine string `json:"business_line"`
}

type SiteDTO struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
}

type CreateDTO struct {
	Name          string          `json:"name" validate:"required"`
	Type          string          `json:"type" validate:"required,oneof=simple with_subsidiaries group"`
	BusinessLines []string        `json:"business_lines" validate:"dive,required"`
	Subsidiaries  []SubsidiaryDTO `json:"subsidiaries" validate:"dive"`
	Sites         []SiteDTO       `json:"sites" validate:"dive"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Type = strings.TrimSpace(d.Type)
	for i := range d.BusinessLines {
		d.BusinessLines[i] = strings.TrimSpace(d.BusinessLines[i])
	}
	for i := range d.Subsidiaries {
		d.Subsidiaries[i].Name = strings.TrimSpace(d.Subsidiaries[i].Name)
		d.Subsidiaries[i].BusinessLine = strings.TrimSpace(d.Subsidiaries[i].BusinessLine)
	}
	for i := range d.Sites {
		d.Sites[i].Name = strings.TrimSpace(d.Sites[i].Name)
		d.Sites[i].Location = strings.TrimSpace(d.Sites[i].Location)
	}
}

// Ok validates the DTO. Business lines and subsidiaries are only accepted
// for multi-entity organization types.
func (d *CreateDTO) Ok(ctx context.Context) (map[string]string, bool) {
	d.Normalize()

	validationErrors := make(serrors.ValidationErrors)

	if errs := constants.Validate.Struct(d); errs != nil {
		validatorErrs := errs.(validator.ValidationErrors)
		getFieldLocaleKey := func(field string) string {
			switch field {
			case "Name", "Type", "BusinessLines", "Subsidiaries", "Sites":
				return fmt.Sprintf("Organizations.Fields.%s", field)
			default:
				return ""
			}
		}
		for field, err := range serrors.ProcessValidatorErrors(validatorErrs, getFieldLocaleKey) {
			validationErrors[field] = err
		}
	}

	if typ := Type(d.Type); typ.IsValid() && !typ.HasSubsidiaries() {
		if len(d.BusinessLines) > 0 {
			validationErrors["BusinessLines"] = serrors.NewError(
				"ORG_BUSINESS_LINES_NOT_ALLOWED",
				"business lines are only allowed for multi-entity organizations",
				"Organizations.Errors.BusinessLinesNotAllowed",
			)
		}
		if len(d.Subsidiaries) > 0 {
			validationErrors["Subsidiaries"] = serrors.NewError(
				"ORG_SUBSIDIARIES_NOT_ALLOWED",
				"subsidiaries are only allowed for multi-entity organizations",
				"Organizations.Errors.SubsidiariesNotAllowed",
			)
		}
	}

	if len(validationErrors) == 0 {
		return map[string]string{}, true
	}
	return serrors.LocalizeValidationErrors(validationErrors, intl.UseLocalizer(ctx)), false
}

// ToEntity builds the aggregate from a validated DTO.
func (d *CreateDTO) ToEntity() (*Organization, error) {
	typ, err := NewType(d.Type)
	if err != nil {
		return nil, err
	}

	subs := make([]Subsidiary, 0, len(d.Subsidiaries))
	for _, s := range d.Subsidiaries {
		subs = append(subs, Subsidiary{Name: s.Name, BusinessLine: s.BusinessLine})
	}
	sites := make([]Site, 0, len(d.Sites))
	for _, s := range d.Sites {
		sites = append(sites, Site{Name: s.Name, Location: s.Location})
	}

	return New(
		d.Name,
		typ,
		WithBusinessLines(d.BusinessLines),
		WithSubsidiaries(subs),
		WithSites(sites),
	), nil
}
