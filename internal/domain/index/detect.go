package index

import (
	"github.com/corey/lor/internal/ports"
	"github.com/google/uuid"
)

// setNamespace seeds disambiguation set IDs. Changing it changes every
// published placeholder ID.
var setNamespace = uuid.MustParse("6f1c3a52-93d4-4e0b-a2c8-5b7e1d0f4c91")

// SetID derives the ID of the set for (locale, key). Identical input yields
// identical IDs, which keeps repeated builds byte-identical.
func SetID(locale ports.Locale, key string) string {
	return uuid.NewSHA1(setNamespace, []byte(string(locale)+"\x00"+key)).String()
}

// Detect emits one AmbiguousResultSet per (key, locale) with more than one
// candidate, in key insertion order and then AllLocales order. A key that
// collides in two locales yields two sets, each carrying only its locale's
// candidates.
func Detect(idx *ports.QueryIndex) []*ports.AmbiguousResultSet {
	var sets []*ports.AmbiguousResultSet
	for _, key := range idx.Keys() {
		rs := idx.Get(key)
		if len(rs) < 2 {
			continue
		}
		for _, locale := range ports.AllLocales {
			cands := idx.ForLocale(key, locale)
			if len(cands) < 2 {
				continue
			}
			sets = append(sets, &ports.AmbiguousResultSet{
				ID:            SetID(locale, key),
				Locale:        locale,
				Query:         key,
				LookupResults: cands,
			})
		}
	}
	return sets
}
