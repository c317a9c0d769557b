package ports

import "fmt"

// Kind tags a LookupResult with the entity variant it points at.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAbnoPage
	KindCombatPage
	KindKeyPage
	KindPassive
	// KindDisambiguation marks a placeholder whose EntityID references an
	// AmbiguousResultSet rather than an entity.
	KindDisambiguation
)

// QueryableKinds is the fixed kind order used by the index builder.
var QueryableKinds = []Kind{KindAbnoPage, KindCombatPage, KindKeyPage, KindPassive}

var kindNames = map[Kind]string{
	KindAbnoPage:       "abno_page",
	KindCombatPage:     "combat_page",
	KindKeyPage:        "key_page",
	KindPassive:        "passive",
	KindDisambiguation: "disambiguation",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("cannot marshal %s", k)
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ReleaseGroup is the chronological chapter an entity was released in.
// Lower values were released earlier.
type ReleaseGroup int

const (
	Canard ReleaseGroup = iota
	UrbanMyth
	UrbanLegend
	UrbanPlague
	UrbanNightmare
	StarOfTheCity
	ImpuritasCivitatis
	// LibraryOfRuina is used when nothing more specific is known.
	LibraryOfRuina
)

var releaseGroupNames = [...]string{
	"Canard",
	"Urban Myth",
	"Urban Legend",
	"Urban Plague",
	"Urban Nightmare",
	"Star of the City",
	"Impuritas Civitatis",
	"Library of Ruina",
}

func (g ReleaseGroup) String() string {
	if g >= 0 && int(g) < len(releaseGroupNames) {
		return releaseGroupNames[g]
	}
	return fmt.Sprintf("ReleaseGroup(%d)", int(g))
}
