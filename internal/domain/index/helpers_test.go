package index

import (
	"time"

	"github.com/corey/lor/internal/ports"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func abno(locale ports.Locale, id, name string, g ports.ReleaseGroup) ports.Entity {
	return &ports.AbnoPage{EntityHeader: ports.EntityHeader{ID: id, Name: name, Locale: locale, ReleaseGroup: g}}
}

func combat(locale ports.Locale, id, name string, g ports.ReleaseGroup) ports.Entity {
	return &ports.CombatPage{EntityHeader: ports.EntityHeader{ID: id, Name: name, Locale: locale, ReleaseGroup: g}}
}

func keyPage(locale ports.Locale, id, name string, g ports.ReleaseGroup) ports.Entity {
	return &ports.KeyPage{EntityHeader: ports.EntityHeader{ID: id, Name: name, Locale: locale, ReleaseGroup: g}}
}

func passive(locale ports.Locale, id, name string, g ports.ReleaseGroup) ports.Entity {
	return &ports.Passive{EntityHeader: ports.EntityHeader{ID: id, Name: name, Locale: locale, ReleaseGroup: g}}
}

// collectableSet is an in-memory ports.Collectables.
type collectableSet map[ports.Kind]map[string]bool

func (c collectableSet) IsCollectable(kind ports.Kind, id string) bool {
	return c[kind][id]
}

// fixture is a small multi-locale data set with collisions of every flavor.
func fixture() map[ports.Locale][]ports.Entity {
	return map[ports.Locale][]ports.Entity{
		ports.LocaleEN: {
			combat(ports.LocaleEN, "c-bb", "Bloodbath", ports.UrbanLegend),
			abno(ports.LocaleEN, "a-bb", "Bloodbath", ports.UrbanPlague),
			passive(ports.LocaleEN, "p-1", "Black Silence", ports.ImpuritasCivitatis),
			combat(ports.LocaleEN, "c-ev1", "Evade", ports.Canard),
			combat(ports.LocaleEN, "c-ev2", "Evade", ports.UrbanMyth),
			keyPage(ports.LocaleEN, "k-1", "Roland", ports.Canard),
		},
		ports.LocaleKR: {
			abno(ports.LocaleKR, "a-bb", "피바다", ports.UrbanPlague),
			combat(ports.LocaleKR, "c-bb", "피바다", ports.UrbanLegend),
			keyPage(ports.LocaleKR, "k-1", "Roland", ports.Canard),
		},
		ports.LocaleJP: {
			passive(ports.LocaleJP, "p-1", "Black Silence", ports.ImpuritasCivitatis),
		},
	}
}
