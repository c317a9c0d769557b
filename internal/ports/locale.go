package ports

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLocale is returned by ParseLocale for tags outside AllLocales.
var ErrUnknownLocale = errors.New("unknown locale")

// Locale is one of the five content locales.
type Locale string

const (
	LocaleKR   Locale = "kr"
	LocaleJP   Locale = "jp"
	LocaleEN   Locale = "en"
	LocaleCN   Locale = "cn"
	LocaleTRCN Locale = "trcn"
)

// AllLocales is the fixed processing order. Index insertion order, detector
// output order and resolver suffix assignment all follow it.
var AllLocales = []Locale{LocaleKR, LocaleJP, LocaleEN, LocaleCN, LocaleTRCN}

// Valid reports whether l is one of AllLocales.
func (l Locale) Valid() bool {
	for _, x := range AllLocales {
		if l == x {
			return true
		}
	}
	return false
}

// ParseLocale accepts a locale tag ("en", "KR", " trcn ").
func ParseLocale(s string) (Locale, error) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocale, s)
	}
	return l, nil
}

// clientLocales maps chat-client locale identifiers to content locales.
var clientLocales = map[string]Locale{
	"ko":    LocaleKR,
	"ja":    LocaleJP,
	"zh-CN": LocaleCN,
	"zh-TW": LocaleTRCN,
	"en-US": LocaleEN,
	"en-GB": LocaleEN,
}

// FromClientLocale maps a client locale such as "zh-TW" to a content locale.
// Unknown client locales fall back to English.
func FromClientLocale(s string) Locale {
	if l, ok := clientLocales[s]; ok {
		return l
	}
	if l, err := ParseLocale(s); err == nil {
		return l
	}
	return LocaleEN
}
