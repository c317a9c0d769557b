// Package status generates status data for lor.
//
// The daemon writes a JSON status file after every rebuild attempt so the
// last known index state can be read without a running daemon.
package status

import (
	"encoding/json"
	"os"
	"time"

	"github.com/corey/lor/internal/ports"
)

// StatusFile is the filename within the .lor directory where status JSON is written.
const StatusFile = "status.json"

// StatusData is the JSON payload the daemon writes after each rebuild.
type StatusData struct {
	BuiltAt        time.Time `json:"built_at,omitzero"`
	Entities       int       `json:"entities"`
	Skipped        int       `json:"skipped"`
	Keys           int       `json:"keys"`
	AmbiguousSets  int       `json:"ambiguous_sets"`
	Fallbacks      int       `json:"fallbacks"`
	LastError      string    `json:"last_error,omitempty"`
	LastErrorAt    time.Time `json:"last_error_at,omitzero"`
	SnapshotFormat int       `json:"snapshot_format"`
}

// Generate describes the published snapshot. rebuildErr, when non-nil, is
// the failure of the latest rebuild; the counts still describe the snapshot
// being served.
func Generate(m ports.Manifest, rebuildErr error, now time.Time) *StatusData {
	sd := &StatusData{
		BuiltAt:        m.CreatedAt,
		Entities:       m.EntityCount,
		Skipped:        m.SkippedCount,
		Keys:           m.KeyCount,
		AmbiguousSets:  m.AmbiguousCount,
		Fallbacks:      m.FallbackCount,
		SnapshotFormat: m.Version,
	}
	if rebuildErr != nil {
		sd.LastError = rebuildErr.Error()
		sd.LastErrorAt = now.UTC()
	}
	return sd
}

// Healthy reports whether the latest rebuild succeeded and a snapshot exists.
func (s *StatusData) Healthy() bool {
	return s.LastError == "" && !s.BuiltAt.IsZero()
}

// WriteJSON writes the status data as JSON to a file.
func WriteJSON(path string, data *StatusData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ReadJSON reads a status file written by WriteJSON.
func ReadJSON(path string) (*StatusData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sd StatusData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}
