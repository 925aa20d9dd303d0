package values

import (
	"strings"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// mondayLocales maps normalized locale strings to date-name tables.
var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"nl":    monday.LocaleNlNL,
	"pt":    monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"ja":    monday.LocaleJaJP,
}

// dateLocale maps a locale string like "en-GB" to a monday.Locale, falling
// back to the language part and then to US English.
func dateLocale(locale string) monday.Locale {
	locale = strings.ToLower(strings.ReplaceAll(locale, "-", "_"))
	if loc, ok := mondayLocales[locale]; ok {
		return loc
	}
	if lang, _, found := strings.Cut(locale, "_"); found {
		if loc, ok := mondayLocales[lang]; ok {
			return loc
		}
	}
	return monday.LocaleEnUS
}

// Format renders v for display in the given locale. Numbers get locale digit
// grouping and dates get localized month names; every other kind falls back
// to Inspect.
func Format(v Value, locale string) string {
	if locale == "" {
		locale = "en"
	}
	switch val := v.(type) {
	case nil:
		return "null"
	case Number:
		tag, err := language.Parse(locale)
		if err != nil {
			return val.Inspect()
		}
		p := message.NewPrinter(tag)
		return p.Sprintf("%v", number.Decimal(val.Value))
	case Unit:
		return Format(Number{Value: val.Value}, locale) + " " + val.Unit
	case Date:
		layout := "2 January 2006"
		if dateLocale(locale) == monday.LocaleEnUS {
			layout = "January 2, 2006"
		}
		return monday.Format(val.Value, layout, dateLocale(locale))
	default:
		return val.Inspect()
	}
}
