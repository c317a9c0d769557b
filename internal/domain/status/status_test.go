package status

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/lor/internal/ports"
)

func manifest() ports.Manifest {
	return ports.Manifest{
		Version:        ports.SnapshotVersion,
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		EntityCount:    1200,
		SkippedCount:   2,
		KeyCount:       1350,
		AmbiguousCount: 40,
		FallbackCount:  3,
	}
}

func TestGenerate_Basic(t *testing.T) {
	data := Generate(manifest(), nil, time.Now())
	assert.Equal(t, 1200, data.Entities)
	assert.Equal(t, 2, data.Skipped)
	assert.Equal(t, 1350, data.Keys)
	assert.Equal(t, 40, data.AmbiguousSets)
	assert.Equal(t, 3, data.Fallbacks)
	assert.Equal(t, ports.SnapshotVersion, data.SnapshotFormat)
	assert.Empty(t, data.LastError)
	assert.True(t, data.Healthy())
}

func TestGenerate_WithError(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	data := Generate(manifest(), errors.New("locale en: unexpected EOF"), now)
	assert.Equal(t, "locale en: unexpected EOF", data.LastError)
	assert.Equal(t, now, data.LastErrorAt)
	assert.Equal(t, 1350, data.Keys)
	assert.False(t, data.Healthy())
}

func TestGenerate_NoSnapshot(t *testing.T) {
	data := Generate(ports.Manifest{}, errors.New("data dir: no such file"), time.Now())
	assert.Zero(t, data.Keys)
	assert.True(t, data.BuiltAt.IsZero())
	assert.False(t, data.Healthy())
}

func TestWriteReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), StatusFile)
	in := Generate(manifest(), nil, time.Now())

	require.NoError(t, WriteJSON(path, in))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "last_error")

	out, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadJSON_Missing(t *testing.T) {
	_, err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, os.IsNotExist(err))
}
