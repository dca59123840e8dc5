package serrors

import (
	"github.com/iota-uz/go-i18n/v2/i18n"
)

// BaseError is a user-facing error carrying a stable machine code and a
// locale key used to resolve the message shown to the user. Exactly one
// notification is derived from a BaseError at the controller boundary.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func (e *BaseError) Error() string {
	return e.Message
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	e.TemplateData = data
	return e
}

// Localize resolves the user-facing message, falling back to the raw
// message when the localizer has no entry for the key.
func (e *BaseError) Localize(l *i18n.Localizer) string {
	if l == nil || e.LocaleKey == "" {
		return e.Message
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    e.LocaleKey,
		TemplateData: e.TemplateData,
	})
	if err != nil {
		return e.Message
	}
	return msg
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}
