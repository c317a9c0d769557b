// Package snapshotjson exports a snapshot as plain JSON files for consumers
// that do not link this module:
//
//	queryLookupResults.json  {key: LookupResult[]}, index order
//	autocomplete.json        {"data": [key, ...]}
//	ambiguousResults.json    {setID: AmbiguousResultSet}, detection order
//	entities.json            decorated entities by kind
//	manifest.json            build metadata
//
// Write stages everything in a sibling temp dir and swaps it into place, so
// readers see either the old export or the new one.
package snapshotjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/lor/internal/ports"
)

const (
	FileIndex      = "queryLookupResults.json"
	FileVocabulary = "autocomplete.json"
	FileAmbiguous  = "ambiguousResults.json"
	FileEntities   = "entities.json"
	FileManifest   = "manifest.json"
)

// Write exports snap into dir, replacing whatever was there.
func Write(dir string, snap *ports.Snapshot) error {
	if snap == nil || snap.Index == nil {
		return errors.New("snapshotjson: incomplete snapshot")
	}
	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+"-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	entities := snap.Entities
	if entities == nil {
		entities = ports.NewEntityTable()
	}
	files := []struct {
		name string
		v    any
	}{
		{FileIndex, snap.Index},
		{FileVocabulary, snap.Vocabulary},
		{FileAmbiguous, orderedSets(snap.Disambiguations)},
		{FileEntities, entities},
		{FileManifest, snap.Manifest},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(tmp, f.name), f.v); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return AtomicSwap(tmp, dir)
}

// Load reads an export back into a snapshot.
func Load(dir string) (*ports.Snapshot, error) {
	snap := &ports.Snapshot{
		Index:    ports.NewQueryIndex(),
		Entities: ports.NewEntityTable(),
	}
	var sets orderedSets
	files := []struct {
		name   string
		target any
	}{
		{FileManifest, &snap.Manifest},
		{FileIndex, snap.Index},
		{FileVocabulary, &snap.Vocabulary},
		{FileAmbiguous, &sets},
		{FileEntities, snap.Entities},
	}
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, f.target); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	snap.Disambiguations = sets
	return snap, nil
}

// AtomicSwap replaces destDir with srcDir. The previous destDir is kept as
// destDir.bak until the rename succeeds and restored if it fails.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// orderedSets is a JSON object keyed by set ID that keeps slice order.
type orderedSets []*ports.AmbiguousResultSet

func (s orderedSets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, set := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(set.ID)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(set)
		if err != nil {
			return nil, fmt.Errorf("marshal set %s: %w", set.ID, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *orderedSets) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ambiguous results: expected object, got %v", tok)
	}
	*s = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("ambiguous results: expected id, got %v", tok)
		}
		set := &ports.AmbiguousResultSet{}
		if err := dec.Decode(set); err != nil {
			return fmt.Errorf("ambiguous results %s: %w", id, err)
		}
		if set.ID != id {
			return fmt.Errorf("ambiguous results: key %s holds set %s", id, set.ID)
		}
		*s = append(*s, set)
	}
	_, err = dec.Token()
	return err
}
