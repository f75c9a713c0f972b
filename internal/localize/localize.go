// Package localize renders a canonical notification payload into the
// form delivered to one recipient.
package localize

import "github.com/faithbridge/notify/internal/model"

// DefaultLanguage is the final fallback when neither the recipient's
// preferences nor the caller provide a language.
const DefaultLanguage = "en"

// Localize returns a copy of payload carrying the language resolved for
// this recipient and category. Resolution order: the category's own
// language setting, then the community language, then fallback, then
// DefaultLanguage. The resolved language is stamped into data.language
// so the receiving client can render correctly even when it cannot
// re-derive locale itself. The input payload is never modified.
func Localize(payload model.Payload, prefs model.Preferences, category model.Category, fallback string) model.Payload {
	lang := ResolveLanguage(prefs, category, fallback)

	out := payload
	out.Data = payload.CloneData()
	out.Data["language"] = lang

	if len(payload.Actions) > 0 {
		out.Actions = append([]model.Action(nil), payload.Actions...)
	}

	return out
}

// ResolveLanguage picks the delivery language for one recipient.
func ResolveLanguage(prefs model.Preferences, category model.Category, fallback string) string {
	if lang := prefs.CategoryLanguage(category); lang != "" {
		return lang
	}
	if prefs.Community.Language != "" {
		return prefs.Community.Language
	}
	if fallback != "" {
		return fallback
	}
	return DefaultLanguage
}
