package i18n

import (
	"sort"
	"strings"
)

type Locale string

const (
	LocaleEN Locale = "en"
	LocaleHE Locale = "he"
)

var supportedLocales = []Locale{LocaleEN, LocaleHE}

// ParseLocale accepts tags like "he", "he-IL" or "EN_us" and falls back when unsupported.
func ParseLocale(tag string, fallback Locale) Locale {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	for _, l := range supportedLocales {
		if Locale(tag) == l {
			return l
		}
	}
	return fallback
}

// Text holds one string per supported locale.
type Text struct {
	EN string `json:"en"`
	HE string `json:"he"`
}

func (t Text) In(l Locale) string {
	if l == LocaleHE {
		return t.HE
	}
	return t.EN
}

// Params are substituted into "{name}" placeholders.
type Params map[string]string

func (t Text) With(params Params) Text {
	if len(params) == 0 {
		return t
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(params)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", params[k])
	}
	r := strings.NewReplacer(pairs...)
	return Text{EN: r.Replace(t.EN), HE: r.Replace(t.HE)}
}

// Lookup returns the catalog entry for key, or the key itself for both locales.
func Lookup(key string, params Params) Text {
	t, ok := catalog[key]
	if !ok {
		return Text{EN: key, HE: key}
	}
	return t.With(params)
}

var currencySymbols = map[string]string{
	"ILS": "₪",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// CurrencySymbol maps an ISO 4217 code to its symbol; unknown codes are returned upper-cased.
func CurrencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}
