// Package query reduces display strings to comparison keys and measures
// edit distance between them.
package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// specialChars folds characters that game text uses inconsistently across
// data drops.
var specialChars = strings.NewReplacer(
	"\r\n", "\n",
	"’", "'",
	"Ⅰ", "I",
	"Ⅱ", "II",
	"Ⅲ", "III",
)

// DisplayForm cleans s for display: special characters folded, NFC
// composed, surrounding whitespace trimmed. Case is preserved.
func DisplayForm(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(norm.NFC.String(specialChars.Replace(s)))
}

// LookupKey is the index key profile: DisplayForm, lower-cased.
func LookupKey(s string) string {
	d := DisplayForm(s)
	if d == "" {
		return ""
	}
	// Casers carry state; one per call keeps LookupKey safe for concurrent use.
	return cases.Lower(language.Und).String(d)
}

// Display returns the lookup key of s and, when it differs from the key,
// the cased display form. display is "" when the two are equal.
func Display(s string) (key, display string) {
	d := DisplayForm(s)
	key = LookupKey(d)
	if d != key {
		display = d
	}
	return key, display
}

// AutocompleteForm is the scoring profile: LookupKey with every whitespace
// rune removed. It is never used as an index key.
func AutocompleteForm(s string) string {
	k := LookupKey(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, k)
}
