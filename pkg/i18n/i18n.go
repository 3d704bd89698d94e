// Package i18n localizes the short user-facing messages returned by the API.
// Translations are compiled into the binary.
package i18n

import (
	"fmt"
	"strings"
)

// DefaultLang is used when a key or language is not found
const DefaultLang = "en"

// Translate returns a localized string for key in lang. Extra args are
// passed to fmt.Sprintf. Region subtags ("pt-BR") fall back to the base
// language, then to English. Unknown keys are returned unchanged.
func Translate(key, lang string, args ...interface{}) string {
	langMap, ok := translations[key]
	if !ok {
		return key
	}

	tmpl, ok := langMap[normalizeLang(lang)]
	if !ok {
		tmpl, ok = langMap[DefaultLang]
		if !ok {
			return key
		}
	}

	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Supported reports whether lang has translations
func Supported(lang string) bool {
	_, ok := supportedLangs[normalizeLang(lang)]
	return ok
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return DefaultLang
	}
	return lang
}
