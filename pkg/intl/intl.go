package intl

import (
	"context"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type localizerKey struct{}

type SupportedLanguage struct {
	Code        string
	VerboseName string
	Tag         language.Tag
}

var SupportedLanguages = []SupportedLanguage{
	{
		Code:        "en",
		VerboseName: "English",
		Tag:         language.English,
	},
	{
		Code:        "fr",
		VerboseName: "Français",
		Tag:         language.French,
	},
}

func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, l)
}

// UseLocalizer returns the request localizer, or nil when none is installed
// (CLI tools and tests run without one; callers fall back to raw messages).
func UseLocalizer(ctx context.Context) *i18n.Localizer {
	l, _ := ctx.Value(localizerKey{}).(*i18n.Localizer)
	return l
}

// MustT translates the key, falling back to the key itself when no
// localizer or message is available.
func MustT(ctx context.Context, key string) string {
	l := UseLocalizer(ctx)
	if l == nil {
		return key
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return key
	}
	return msg
}
