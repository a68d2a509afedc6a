package nlp

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ModelLanguage returns the English name of the language a model identifier
// starts with, e.g. "Spanish" for "es_core_news_sm". It returns "" when the
// prefix is not a known language code ("xx_ent_wiki_sm" is multi-language).
func ModelLanguage(model string) string {
	code, _, _ := strings.Cut(model, "_")
	code, _, _ = strings.Cut(code, "-")
	if code == "" {
		return ""
	}

	base, err := language.ParseBase(strings.ToLower(code))
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(base)
}
