package catalog

import "golang.org/x/text/language"

// Recommended is the distinguished category meaning "no category filter".
// Filtering always compares against the default-locale spelling so the
// visible list is stable regardless of the active UI locale.
const Recommended = "Recommended"

// supportedLocales lists the locales with a translated sentinel label. The
// first entry is the fallback.
var supportedLocales = []language.Tag{
	language.English,
	language.SimplifiedChinese,
	language.TraditionalChinese,
	language.Japanese,
	language.Korean,
	language.German,
	language.French,
	language.Spanish,
	language.Portuguese,
}

var sentinelLabels = []string{
	Recommended,
	"推荐",
	"推薦",
	"おすすめ",
	"추천",
	"Empfohlen",
	"Recommandé",
	"Recomendado",
	"Recomendado",
}

var sentinelMatcher = language.NewMatcher(supportedLocales)

// Sentinel returns the canonical "all categories" value used by the filter
// engine. Always the default-locale spelling.
func Sentinel() string {
	return Recommended
}

// DisplaySentinel returns the sentinel label for a BCP 47 locale, falling
// back to the default locale for unknown or malformed inputs. Display only:
// the returned value must not be fed back into the filter engine.
func DisplaySentinel(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return Recommended
	}
	_, i, _ := sentinelMatcher.Match(tag)
	return sentinelLabels[i]
}
