package index

import (
	"bytes"
	"context"
	"testing"

	"github.com/corey/lor/internal/logging"
	"github.com/corey/lor/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_KeysInLocaleThenKindOrder(t *testing.T) {
	built, err := Build(context.Background(), fixture(), BuildOptions{})
	require.NoError(t, err)

	// kr first, then jp, then en. Within en: abno, combat, key page, passive.
	assert.Equal(t, []string{
		"피바다",
		"roland",
		"black silence",
		"bloodbath",
		"evade",
	}, built.Index.Keys())
	assert.Equal(t, built.Index.Keys(), built.Vocabulary.Data)

	bb := built.Index.Get("bloodbath")
	require.Len(t, bb, 2)
	assert.Equal(t, ports.KindAbnoPage, bb[0].Kind)
	assert.Equal(t, ports.KindCombatPage, bb[1].Kind)
	assert.Equal(t, "Bloodbath", bb[0].DisplayQuery)

	roland := built.Index.Get("roland")
	require.Len(t, roland, 2)
	assert.Equal(t, ports.LocaleKR, roland[0].Locale)
	assert.Equal(t, ports.LocaleEN, roland[1].Locale)

	assert.Equal(t, 10, built.Entities.Len())
}

func TestBuild_DisplayQueryOmittedWhenSameAsKey(t *testing.T) {
	in := map[ports.Locale][]ports.Entity{
		ports.LocaleKR: {passive(ports.LocaleKR, "p", "피바다", ports.Canard)},
	}
	built, err := Build(context.Background(), in, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, "", built.Index.Get("피바다")[0].DisplayQuery)
}

func TestBuild_MalformedAbortsByDefault(t *testing.T) {
	in := map[ports.Locale][]ports.Entity{
		ports.LocaleEN: {
			passive(ports.LocaleEN, "p-1", "Fine", ports.Canard),
			passive(ports.LocaleEN, "", "No ID", ports.Canard),
		},
	}
	_, err := Build(context.Background(), in, BuildOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEntity)

	var ee *EntityError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "missing id", ee.Reason)
}

func TestBuild_MalformedSkippedWhenTolerated(t *testing.T) {
	var logs bytes.Buffer
	in := map[ports.Locale][]ports.Entity{
		ports.LocaleEN: {
			passive(ports.LocaleEN, "p-1", "Fine", ports.Canard),
			passive(ports.LocaleEN, "p-2", "   ", ports.Canard),
			passive(ports.LocaleKR, "p-3", "Wrong Locale", ports.Canard),
			nil,
		},
	}
	built, err := Build(context.Background(), in, BuildOptions{
		SkipMalformed: true,
		Logger:        logging.NewLogger(&logging.Config{Level: logging.LevelWarn, JSONFormat: true, Output: &logs}),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, built.Skipped)
	assert.Equal(t, []string{"fine"}, built.Index.Keys())
	assert.Contains(t, logs.String(), "missing name")
	assert.Contains(t, logs.String(), "nil entity")
}

func TestBuild_UnknownLocaleRejected(t *testing.T) {
	in := map[ports.Locale][]ports.Entity{
		"de": {passive("de", "p", "Name", ports.Canard)},
	}
	_, err := Build(context.Background(), in, BuildOptions{SkipMalformed: true})
	assert.ErrorIs(t, err, ports.ErrUnknownLocale)
}

func TestBuild_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, fixture(), BuildOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_EmptyInput(t *testing.T) {
	built, err := Build(context.Background(), nil, BuildOptions{})
	require.NoError(t, err)
	assert.Zero(t, built.Index.Len())
	assert.Empty(t, built.Vocabulary.Data)
}
