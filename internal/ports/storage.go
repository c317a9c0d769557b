// Package ports defines the data model and the interfaces (contracts) that
// adapters must implement. Domain logic depends only on these types, never
// on concrete adapters.
package ports

import (
	"context"
	"time"
)

// SnapshotVersion is bumped whenever the persisted snapshot layout changes.
const SnapshotVersion = 1

// Manifest describes how a snapshot was produced.
type Manifest struct {
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	SourceDir      string    `json:"sourceDir,omitempty"`
	EntityCount    int       `json:"entityCount"`
	SkippedCount   int       `json:"skippedCount"`
	KeyCount       int       `json:"keyCount"`
	AmbiguousCount int       `json:"ambiguousCount"`
	FallbackCount  int       `json:"fallbackCount"`
}

// Snapshot is the immutable unit handed from the build pipeline to the
// runtime service. Nothing mutates a snapshot once it is published.
type Snapshot struct {
	Manifest        Manifest
	Index           *QueryIndex
	Vocabulary      Vocabulary
	Disambiguations []*AmbiguousResultSet
	Entities        *EntityTable
}

// Storage persists built snapshots to durable storage.
// Crash safety: SaveSnapshot must be transactional. A crash mid-write must
// not corrupt the previously committed snapshot.
type Storage interface {
	// SaveSnapshot persists snap under name, replacing any prior snapshot.
	SaveSnapshot(name string, snap *Snapshot) error

	// LoadSnapshot retrieves a snapshot.
	// Returns nil, nil if none exists.
	LoadSnapshot(name string) (*Snapshot, error)

	// DeleteSnapshot removes a snapshot. Deleting a missing one is not an error.
	DeleteSnapshot(name string) error
}

// EntitySource supplies fully localized entities per locale.
type EntitySource interface {
	LoadEntities(ctx context.Context) (map[Locale][]Entity, error)
}

// Collectables reports whether an entity can be obtained in game.
// Only combat pages and key pages are ever collectable.
type Collectables interface {
	IsCollectable(kind Kind, entityID string) bool
}
