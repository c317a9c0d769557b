// Package datadir reads localized entity files from a data directory:
//
//	<data>/<locale>/abno.json
//	<data>/<locale>/combat.json
//	<data>/<locale>/keypages.json
//	<data>/<locale>/passive.json
//	<data>/collectables.yaml
//
// Each entity file is a JSON array. A missing locale directory or file is
// an empty list.
package datadir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/corey/lor/internal/ports"
)

// Entity file names, in the order their entities are emitted.
const (
	FileAbno     = "abno.json"
	FileCombat   = "combat.json"
	FileKeyPages = "keypages.json"
	FilePassive  = "passive.json"
)

// Files lists the entity files watched for changes.
var Files = []string{FileAbno, FileCombat, FileKeyPages, FilePassive}

// Source implements ports.EntitySource over a data directory.
type Source struct {
	dir string
}

var _ ports.EntitySource = (*Source)(nil)

// NewSource returns a Source rooted at dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Dir returns the data directory.
func (s *Source) Dir() string { return s.dir }

// LoadEntities reads every locale in parallel. Entities with no locale get
// the directory's locale; a conflicting one is left for the builder to reject.
func (s *Source) LoadEntities(ctx context.Context) (map[ports.Locale][]ports.Entity, error) {
	if _, err := os.Stat(s.dir); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	slots := make([][]ports.Entity, len(ports.AllLocales))
	g, ctx := errgroup.WithContext(ctx)
	for i, locale := range ports.AllLocales {
		g.Go(func() error {
			ents, err := s.loadLocale(ctx, locale)
			if err != nil {
				return fmt.Errorf("locale %s: %w", locale, err)
			}
			slots[i] = ents
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[ports.Locale][]ports.Entity, len(slots))
	for i, ents := range slots {
		if len(ents) > 0 {
			out[ports.AllLocales[i]] = ents
		}
	}
	return out, nil
}

func (s *Source) loadLocale(ctx context.Context, locale ports.Locale) ([]ports.Entity, error) {
	dir := filepath.Join(s.dir, string(locale))
	var out []ports.Entity

	var abno []*ports.AbnoPage
	var combat []*ports.CombatPage
	var keys []*ports.KeyPage
	var passives []*ports.Passive
	reads := []struct {
		name   string
		target any
	}{
		{FileAbno, &abno},
		{FileCombat, &combat},
		{FileKeyPages, &keys},
		{FilePassive, &passives},
	}
	for _, r := range reads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := readJSON(filepath.Join(dir, r.name), r.target); err != nil {
			return nil, err
		}
	}

	// JSON nulls are kept as nil entities so the builder applies its
	// malformed-entity policy to them.
	for _, e := range abno {
		out = appendEntity(out, e)
	}
	for _, e := range combat {
		out = appendEntity(out, e)
	}
	for _, e := range keys {
		out = appendEntity(out, e)
	}
	for _, e := range passives {
		out = appendEntity(out, e)
	}
	for _, e := range out {
		if e == nil {
			continue
		}
		if h := e.Header(); h.Locale == "" {
			h.Locale = locale
		}
	}
	return out, nil
}

// appendEntity appends e, turning a typed nil pointer into a nil Entity.
func appendEntity[P interface {
	comparable
	ports.Entity
}](out []ports.Entity, e P) []ports.Entity {
	var zero P
	if e == zero {
		return append(out, nil)
	}
	return append(out, e)
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}
