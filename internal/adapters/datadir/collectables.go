package datadir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/corey/lor/internal/ports"
)

// CollectablesFile is the default collectables table name inside the data dir.
const CollectablesFile = "collectables.yaml"

// collectablesYAML is the on-disk form:
//
//	combat_page: [id, ...]
//	key_page: [id, ...]
type collectablesYAML struct {
	CombatPages []string `yaml:"combat_page"`
	KeyPages    []string `yaml:"key_page"`
}

// CollectableSet implements ports.Collectables from a static table.
// Only combat pages and key pages can be collectable.
type CollectableSet struct {
	combat map[string]struct{}
	key    map[string]struct{}
}

var _ ports.Collectables = (*CollectableSet)(nil)

// NewCollectableSet builds a set from id lists.
func NewCollectableSet(combatPages, keyPages []string) *CollectableSet {
	c := &CollectableSet{
		combat: make(map[string]struct{}, len(combatPages)),
		key:    make(map[string]struct{}, len(keyPages)),
	}
	for _, id := range combatPages {
		c.combat[id] = struct{}{}
	}
	for _, id := range keyPages {
		c.key[id] = struct{}{}
	}
	return c
}

// LoadCollectables parses path. A missing file is an empty set.
func LoadCollectables(path string) (*CollectableSet, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewCollectableSet(nil, nil), nil
	}
	if err != nil {
		return nil, err
	}
	var raw collectablesYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return NewCollectableSet(raw.CombatPages, raw.KeyPages), nil
}

// IsCollectable implements ports.Collectables.
func (c *CollectableSet) IsCollectable(kind ports.Kind, id string) bool {
	if c == nil {
		return false
	}
	var ok bool
	switch kind {
	case ports.KindCombatPage:
		_, ok = c.combat[id]
	case ports.KindKeyPage:
		_, ok = c.key[id]
	}
	return ok
}

// Len returns the number of collectable ids.
func (c *CollectableSet) Len() int {
	if c == nil {
		return 0
	}
	return len(c.combat) + len(c.key)
}
