package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/iota-uz/go-i18n/v2/i18n"
)

// ValidationErrors maps DTO field names to user-facing errors.
type ValidationErrors map[string]*BaseError

// fieldKeyTemplateSlot holds the locale key of the field label, resolved
// separately before the error sentence itself is rendered.
const fieldKeyTemplateSlot = "FieldKey"

func NewFieldRequiredError(field, fieldLocaleKey string) *BaseError {
	return NewError(
		"VALIDATION_REQUIRED",
		fmt.Sprintf("%s is required", field),
		"ValidationErrors.required",
	).WithTemplateData(map[string]string{
		"Field":              field,
		fieldKeyTemplateSlot: fieldLocaleKey,
	})
}

func NewInvalidFieldError(field, fieldLocaleKey string) *BaseError {
	return NewError(
		"VALIDATION_INVALID",
		fmt.Sprintf("%s is invalid", field),
		"ValidationErrors.invalid",
	).WithTemplateData(map[string]string{
		"Field":              field,
		fieldKeyTemplateSlot: fieldLocaleKey,
	})
}

// ProcessValidatorErrors converts go-playground validator errors into
// field-keyed BaseErrors. getFieldLocaleKey maps a DTO field name to the
// locale key of its label.
func ProcessValidatorErrors(errs validator.ValidationErrors, getFieldLocaleKey func(field string) string) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fieldErr := range errs {
		field := fieldErr.Field()
		switch fieldErr.Tag() {
		case "required":
			out[field] = NewFieldRequiredError(field, getFieldLocaleKey(field))
		default:
			out[field] = NewInvalidFieldError(field, getFieldLocaleKey(field))
		}
	}
	return out
}

// LocalizeValidationErrors renders each field error. The field label is
// localized first, then substituted into the error sentence.
func LocalizeValidationErrors(errs ValidationErrors, l *i18n.Localizer) map[string]string {
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		label := field
		if l != nil {
			if key := err.TemplateData[fieldKeyTemplateSlot]; key != "" {
				if msg, lErr := l.Localize(&i18n.LocalizeConfig{MessageID: key}); lErr == nil {
					label = msg
				}
			}
		}
		rendered := &BaseError{
			Code:         err.Code,
			Message:      err.Message,
			LocaleKey:    err.LocaleKey,
			TemplateData: map[string]string{"Field": label},
		}
		out[field] = rendered.Localize(l)
	}
	return out
}
