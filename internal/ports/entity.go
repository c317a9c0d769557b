package ports

import (
	"encoding/json"
	"fmt"
)

// Entity is a decorated game entity in one locale. The set of
// implementations is closed: *AbnoPage, *CombatPage, *KeyPage, *Passive.
// Rendering code switches on the concrete type.
type Entity interface {
	Header() *EntityHeader
	Kind() Kind
	sealed()
}

// EntityHeader holds the fields shared by every entity kind.
type EntityHeader struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Locale       Locale       `json:"locale"`
	ReleaseGroup ReleaseGroup `json:"releaseGroup"`
}

func (h *EntityHeader) Header() *EntityHeader { return h }
func (h *EntityHeader) sealed()               {}

// AbnoPage is an abnormality page.
type AbnoPage struct {
	EntityHeader
	Floor        string `json:"floor"`
	EmotionLevel int    `json:"emotionLevel"`
	TargetType   string `json:"targetType,omitempty"`
	Description  string `json:"description"`
}

func (*AbnoPage) Kind() Kind { return KindAbnoPage }

// Die is one dice slot on a combat page.
type Die struct {
	Type   string `json:"type"`
	Min    int    `json:"min"`
	Max    int    `json:"max"`
	Effect string `json:"effect,omitempty"`
}

// CombatPage is a combat page.
type CombatPage struct {
	EntityHeader
	Rarity      string `json:"rarity"`
	Cost        int    `json:"cost"`
	Range       string `json:"range"`
	Dice        []Die  `json:"dice,omitempty"`
	Description string `json:"description,omitempty"`
}

func (*CombatPage) Kind() Kind { return KindCombatPage }

// KeyPage is a key page.
type KeyPage struct {
	EntityHeader
	Rarity   string   `json:"rarity"`
	HP       int      `json:"hp"`
	Stagger  int      `json:"stagger"`
	SpeedMin int      `json:"speedMin"`
	SpeedMax int      `json:"speedMax"`
	Light    int      `json:"light"`
	Passives []string `json:"passives,omitempty"`
}

func (*KeyPage) Kind() Kind { return KindKeyPage }

// Passive is a key page passive ability.
type Passive struct {
	EntityHeader
	Cost        int    `json:"cost"`
	Rarity      string `json:"rarity"`
	Description string `json:"description"`
}

func (*Passive) Kind() Kind { return KindPassive }

// EntityRef identifies one entity instance. Entity IDs are only unique
// within a kind, and every locale carries its own copy.
type EntityRef struct {
	Kind   Kind
	Locale Locale
	ID     string
}

// RefOf returns the entity reference of a non-placeholder result.
func RefOf(r LookupResult) EntityRef {
	return EntityRef{Kind: r.Kind, Locale: r.Locale, ID: r.EntityID}
}

func refOfEntity(e Entity) EntityRef {
	h := e.Header()
	return EntityRef{Kind: e.Kind(), Locale: h.Locale, ID: h.ID}
}

// EntityTable stores decorated entities for rendering lookup hits.
type EntityTable struct {
	byRef map[EntityRef]Entity
	order []Entity
}

// NewEntityTable creates an empty table.
func NewEntityTable() *EntityTable {
	return &EntityTable{byRef: make(map[EntityRef]Entity)}
}

// Add stores e. A later entity with the same reference replaces the earlier one.
func (t *EntityTable) Add(e Entity) {
	ref := refOfEntity(e)
	if _, exists := t.byRef[ref]; !exists {
		t.order = append(t.order, e)
	} else {
		for i, old := range t.order {
			if refOfEntity(old) == ref {
				t.order[i] = e
				break
			}
		}
	}
	t.byRef[ref] = e
}

// Get returns the entity for ref.
func (t *EntityTable) Get(ref EntityRef) (Entity, bool) {
	if t == nil {
		return nil, false
	}
	e, ok := t.byRef[ref]
	return e, ok
}

// Len returns the number of stored entities.
func (t *EntityTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// All returns entities in insertion order.
func (t *EntityTable) All() []Entity {
	if t == nil {
		return nil
	}
	out := make([]Entity, len(t.order))
	copy(out, t.order)
	return out
}

type entityTableJSON struct {
	AbnoPages   []*AbnoPage   `json:"abnoPages"`
	CombatPages []*CombatPage `json:"combatPages"`
	KeyPages    []*KeyPage    `json:"keyPages"`
	Passives    []*Passive    `json:"passives"`
}

func (t *EntityTable) MarshalJSON() ([]byte, error) {
	out := entityTableJSON{
		AbnoPages:   []*AbnoPage{},
		CombatPages: []*CombatPage{},
		KeyPages:    []*KeyPage{},
		Passives:    []*Passive{},
	}
	for _, e := range t.order {
		switch v := e.(type) {
		case *AbnoPage:
			out.AbnoPages = append(out.AbnoPages, v)
		case *CombatPage:
			out.CombatPages = append(out.CombatPages, v)
		case *KeyPage:
			out.KeyPages = append(out.KeyPages, v)
		case *Passive:
			out.Passives = append(out.Passives, v)
		default:
			return nil, fmt.Errorf("unexpected entity type %T", e)
		}
	}
	return json.Marshal(out)
}

func (t *EntityTable) UnmarshalJSON(b []byte) error {
	var in entityTableJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	t.byRef = make(map[EntityRef]Entity)
	t.order = nil
	for _, e := range in.AbnoPages {
		t.Add(e)
	}
	for _, e := range in.CombatPages {
		t.Add(e)
	}
	for _, e := range in.KeyPages {
		t.Add(e)
	}
	for _, e := range in.Passives {
		t.Add(e)
	}
	return nil
}

// DecodeEntity unmarshals data into the concrete type for kind.
func DecodeEntity(kind Kind, data []byte) (Entity, error) {
	var e Entity
	switch kind {
	case KindAbnoPage:
		e = &AbnoPage{}
	case KindCombatPage:
		e = &CombatPage{}
	case KindKeyPage:
		e = &KeyPage{}
	case KindPassive:
		e = &Passive{}
	default:
		return nil, fmt.Errorf("no entity type for kind %s", kind)
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, err
	}
	return e, nil
}
