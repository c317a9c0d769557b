package datadir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/lor/internal/ports"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestSource_LoadEntities(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "en", FileAbno), `[{"id":"a-bb","name":"Bloodbath","releaseGroup":3,"floor":"Literature","emotionLevel":2}]`)
	write(t, filepath.Join(dir, "en", FileCombat), `[
		{"id":"c-bb","name":"Bloodbath","releaseGroup":2,"cost":1,"dice":[{"type":"Slash","min":3,"max":7}]},
		null,
		{"id":"c-ev","name":"Evade","releaseGroup":0,"cost":0}
	]`)
	write(t, filepath.Join(dir, "en", FilePassive), `[{"id":"p-1","name":"Black Silence","locale":"en","releaseGroup":6}]`)
	write(t, filepath.Join(dir, "kr", FileKeyPages), `[{"id":"k-1","name":"롤랑","releaseGroup":0,"hp":60}]`)

	src := NewSource(dir)
	got, err := src.LoadEntities(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	en := got[ports.LocaleEN]
	require.Len(t, en, 5)

	// abno, combat, keypages, passive order; nulls kept in place
	assert.Equal(t, ports.KindAbnoPage, en[0].Kind())
	assert.Equal(t, "c-bb", en[1].Header().ID)
	assert.Nil(t, en[2])
	assert.Equal(t, "c-ev", en[3].Header().ID)
	assert.Equal(t, ports.KindPassive, en[4].Kind())

	for _, e := range en {
		if e != nil {
			assert.Equal(t, ports.LocaleEN, e.Header().Locale)
		}
	}
	cp := en[1].(*ports.CombatPage)
	assert.Equal(t, ports.UrbanLegend, cp.ReleaseGroup)
	assert.Equal(t, []ports.Die{{Type: "Slash", Min: 3, Max: 7}}, cp.Dice)

	kr := got[ports.LocaleKR]
	require.Len(t, kr, 1)
	assert.Equal(t, ports.LocaleKR, kr[0].Header().Locale)
	assert.Equal(t, 60, kr[0].(*ports.KeyPage).HP)
}

func TestSource_KeepsConflictingLocale(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "jp", FilePassive), `[{"id":"p","name":"x","locale":"en"}]`)

	got, err := NewSource(dir).LoadEntities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ports.LocaleEN, got[ports.LocaleJP][0].Header().Locale)
}

func TestSource_MissingDir(t *testing.T) {
	_, err := NewSource(filepath.Join(t.TempDir(), "nope")).LoadEntities(context.Background())
	assert.Error(t, err)
}

func TestSource_EmptyDir(t *testing.T) {
	got, err := NewSource(t.TempDir()).LoadEntities(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSource_BadJSON(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "cn", FileCombat), `{"not":"an array"}`)

	_, err := NewSource(dir).LoadEntities(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locale cn")
	assert.Contains(t, err.Error(), FileCombat)
}

func TestSource_Canceled(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "en", FileAbno), `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(dir).LoadEntities(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadCollectables(t *testing.T) {
	path := filepath.Join(t.TempDir(), CollectablesFile)
	write(t, path, "combat_page:\n  - c-bb\n  - c-ev\nkey_page: [k-1]\n")

	c, err := LoadCollectables(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.IsCollectable(ports.KindCombatPage, "c-bb"))
	assert.True(t, c.IsCollectable(ports.KindKeyPage, "k-1"))
	assert.False(t, c.IsCollectable(ports.KindKeyPage, "c-bb"))
	assert.False(t, c.IsCollectable(ports.KindPassive, "c-bb"))
	assert.False(t, c.IsCollectable(ports.KindAbnoPage, "k-1"))
}

func TestLoadCollectables_Missing(t *testing.T) {
	c, err := LoadCollectables(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Zero(t, c.Len())
	assert.False(t, c.IsCollectable(ports.KindCombatPage, "x"))

	var nilSet *CollectableSet
	assert.False(t, nilSet.IsCollectable(ports.KindCombatPage, "x"))
}

func TestLoadCollectables_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), CollectablesFile)
	write(t, path, "combat_page: {")
	_, err := LoadCollectables(path)
	assert.Error(t, err)
}
