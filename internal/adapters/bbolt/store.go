// Package bbolt implements the ports.Storage interface using bbolt (embedded B+ tree).
// Each named snapshot gets its own top-level bucket holding one blob per part.
// A snapshot is written in a single transaction, so a crash mid-write leaves
// the previously committed snapshot intact.
package bbolt

import (
	"errors"
	"fmt"
	"time"

	"github.com/corey/lor/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Keys inside a snapshot bucket.
var (
	keyManifest        = []byte("manifest")
	keyIndex           = []byte("index")
	keyVocabulary      = []byte("vocabulary")
	keyDisambiguations = []byte("disambiguations")
	keyEntities        = []byte("entities")
)

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.Storage = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the snapshot stored under name.
func (s *Store) SaveSnapshot(name string, snap *ports.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if snap.Index == nil || snap.Entities == nil {
		return fmt.Errorf("incomplete snapshot %q", name)
	}

	parts := []struct {
		key []byte
		val any
	}{
		{keyManifest, snap.Manifest},
		{keyIndex, snap.Index},
		{keyVocabulary, snap.Vocabulary},
		{keyDisambiguations, snap.Disambiguations},
		{keyEntities, snap.Entities},
	}
	blobs := make([][]byte, len(parts))
	for i, p := range parts {
		b, err := encodeBlob(p.val)
		if err != nil {
			return fmt.Errorf("encode %s: %w", p.key, err)
		}
		blobs[i] = b
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		// Drop stale keys from an older layout along with the old values.
		if err := tx.DeleteBucket([]byte(name)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket([]byte(name))
		if err != nil {
			return err
		}
		for i, p := range parts {
			if err := b.Put(p.key, blobs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadSnapshot retrieves the snapshot stored under name.
// Returns nil, nil if none exists.
func (s *Store) LoadSnapshot(name string) (*ports.Snapshot, error) {
	raw := make(map[string][]byte, 5)

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(name))
		if b == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		return b.ForEach(func(k, v []byte) error {
			raw[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	snap := &ports.Snapshot{
		Index:    ports.NewQueryIndex(),
		Entities: ports.NewEntityTable(),
	}
	targets := []struct {
		key    []byte
		target any
	}{
		{keyManifest, &snap.Manifest},
		{keyIndex, snap.Index},
		{keyVocabulary, &snap.Vocabulary},
		{keyDisambiguations, &snap.Disambiguations},
		{keyEntities, snap.Entities},
	}
	for _, t := range targets {
		data, ok := raw[string(t.key)]
		if !ok {
			return nil, fmt.Errorf("snapshot %q: missing %s", name, t.key)
		}
		if err := decodeBlob(data, t.target); err != nil {
			return nil, fmt.Errorf("snapshot %q: decode %s: %w", name, t.key, err)
		}
	}
	return snap, nil
}

// DeleteSnapshot removes a snapshot.
// Idempotent: deleting a nonexistent snapshot is not an error.
func (s *Store) DeleteSnapshot(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(name)); errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		} else {
			return err
		}
	})
}

// Names lists stored snapshot names.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}
