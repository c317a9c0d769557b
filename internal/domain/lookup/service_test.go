package lookup

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/corey/lor/internal/domain/index"
	"github.com/corey/lor/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(locale ports.Locale, id, name string, g ports.ReleaseGroup) ports.EntityHeader {
	return ports.EntityHeader{ID: id, Name: name, Locale: locale, ReleaseGroup: g}
}

// newTestService builds a snapshot through the real pipeline.
func newTestService(t *testing.T, in map[ports.Locale][]ports.Entity, opts Options) *Service {
	t.Helper()
	res, err := index.Run(context.Background(), in, index.Options{})
	require.NoError(t, err)
	return NewService(res.Snapshot("", time.Now()), opts)
}

func bloodbathData() map[ports.Locale][]ports.Entity {
	return map[ports.Locale][]ports.Entity{
		ports.LocaleEN: {
			&ports.AbnoPage{EntityHeader: header(ports.LocaleEN, "a-bb", "Bloodbath", ports.UrbanPlague), Floor: "Literature"},
			&ports.CombatPage{EntityHeader: header(ports.LocaleEN, "c-bb", "Bloodbath", ports.UrbanLegend), Cost: 1},
			&ports.KeyPage{EntityHeader: header(ports.LocaleEN, "k-r", "Roland", ports.Canard), HP: 60},
		},
		ports.LocaleKR: {
			&ports.KeyPage{EntityHeader: header(ports.LocaleKR, "k-r", "Roland", ports.Canard), HP: 60},
		},
	}
}

func TestLookup_ExactHit(t *testing.T) {
	svc := newTestService(t, bloodbathData(), Options{})

	r, err := svc.Lookup("  Bloodbath (Combat Page) ", ports.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, "c-bb", r.EntityID)
	assert.Equal(t, ports.KindCombatPage, r.Kind)

	e, err := svc.Entity(r)
	require.NoError(t, err)
	cp, ok := e.(*ports.CombatPage)
	require.True(t, ok)
	assert.Equal(t, 1, cp.Cost)
}

func TestLookup_CollidedKeyReturnsPlaceholder(t *testing.T) {
	svc := newTestService(t, bloodbathData(), Options{})

	r, err := svc.Lookup("bloodbath", ports.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, ports.KindDisambiguation, r.Kind)

	set, err := svc.Disambiguation(r.EntityID)
	require.NoError(t, err)
	require.Len(t, set.Resolved, 2)
	assert.Equal(t, "bloodbath (abnormality page)", set.Resolved[0].Query)
	assert.Equal(t, "bloodbath (combat page)", set.Resolved[1].Query)

	_, err = svc.Entity(r)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_PreferredLocale(t *testing.T) {
	svc := newTestService(t, bloodbathData(), Options{})

	r, err := svc.Lookup("Roland", ports.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, ports.LocaleEN, r.Locale)

	r, err = svc.Lookup("Roland", ports.LocaleKR)
	require.NoError(t, err)
	assert.Equal(t, ports.LocaleKR, r.Locale)

	// No JP candidate: the first one (KR, built first) wins.
	r, err = svc.Lookup("Roland", ports.LocaleJP)
	require.NoError(t, err)
	assert.Equal(t, ports.LocaleKR, r.Locale)
}

func TestLookup_FuzzyWithinThreshold(t *testing.T) {
	svc := newTestService(t, bloodbathData(), Options{})

	r, err := svc.Lookup("Blodbath", ports.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, "bloodbath", r.Query)

	r, err = svc.Lookup("bloodbath (combat pge)", ports.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, "c-bb", r.EntityID)
}

func TestLookup_FuzzyIgnoresWhitespace(t *testing.T) {
	in := map[ports.Locale][]ports.Entity{
		ports.LocaleEN: {&ports.Passive{EntityHeader: header(ports.LocaleEN, "p", "Black Silence", ports.Canard)}},
	}
	svc := newTestService(t, in, Options{})

	// Four raw edits, zero once whitespace is removed.
	r, err := svc.Lookup("B l a c k Silence", ports.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, "p", r.EntityID)
}

func TestLookup_NotFound(t *testing.T) {
	svc := newTestService(t, bloodbathData(), Options{})

	_, err := svc.Lookup("Xiao", ports.LocaleEN)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Lookup("   ", ports.LocaleEN)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Disambiguation("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_EmptySnapshot(t *testing.T) {
	svc := NewService(&ports.Snapshot{}, Options{})
	_, err := svc.Lookup("anything", ports.LocaleEN)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, svc.Autocomplete("a"))
	assert.Zero(t, svc.Stats().Entities)
}

func TestLookup_EmptyKeyListIsNotFound(t *testing.T) {
	idx := ports.NewQueryIndex()
	require.NoError(t, json.Unmarshal([]byte(`{"foo":[]}`), idx))
	svc := NewService(&ports.Snapshot{
		Index:      idx,
		Vocabulary: ports.Vocabulary{Data: []string{"foo", "bar"}},
	}, Options{})

	for _, q := range []string{"foo", "fooo", "bar", "barr"} {
		_, err := svc.Lookup(q, ports.LocaleEN)
		assert.ErrorIs(t, err, ErrNotFound, q)
	}
	assert.Empty(t, svc.Autocomplete("fo"))
}

func TestLookup_FuzzySkipsEmptyKeys(t *testing.T) {
	idx := ports.NewQueryIndex()
	require.NoError(t, json.Unmarshal([]byte(`{
		"foo": [],
		"fooba": [{"query":"fooba","locale":"en","kind":"passive","entityId":"p"}]
	}`), idx))
	svc := NewService(&ports.Snapshot{
		Index:      idx,
		Vocabulary: ports.Vocabulary{Data: []string{"foo", "fooba"}},
	}, Options{})

	r, err := svc.Lookup("fooo", ports.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, "p", r.EntityID)
}

func TestLookup_FuzzyCacheDisabled(t *testing.T) {
	svc := newTestService(t, bloodbathData(), Options{CacheSize: -1})
	assert.Nil(t, svc.fuzzy)
	for i := 0; i < 2; i++ {
		r, err := svc.Lookup("Blodbath", ports.LocaleEN)
		require.NoError(t, err)
		assert.Equal(t, "bloodbath", r.Query)
	}
}

func TestLookup_FuzzyCacheRemembersMisses(t *testing.T) {
	svc := newTestService(t, bloodbathData(), Options{CacheSize: 8})

	_, err := svc.Lookup("Xiao", ports.LocaleEN)
	require.ErrorIs(t, err, ErrNotFound)
	v, ok := svc.fuzzy.Get("xiao")
	require.True(t, ok)
	assert.Equal(t, "", v)

	_, err = svc.Lookup("Xiao", ports.LocaleEN)
	assert.ErrorIs(t, err, ErrNotFound)
}

func autocompleteService(t *testing.T) *Service {
	t.Helper()
	names := []string{
		"Bloodbath", "Blood Mist", "Bloodfeast", "Blood Moon", "Bloody Mess",
		"Bloom", "Blossom", "Blooming Rose", "Blue Reverberation", "Blot",
		"Bleed", "Blade", "Slash", "Blooded Sword", "Bloated",
	}
	var ents []ports.Entity
	for i, n := range names {
		ents = append(ents, &ports.Passive{EntityHeader: header(ports.LocaleEN, string(rune('a'+i)), n, ports.Canard)})
	}
	return newTestService(t, map[ports.Locale][]ports.Entity{ports.LocaleEN: ents}, Options{})
}

func TestAutocomplete_OrderedByDistanceLengthLexicographic(t *testing.T) {
	svc := autocompleteService(t)

	assert.Equal(t, []string{
		// distance 0, by length then bytes
		"bloom", "bloodbath", "blood mist", "blood moon", "bloodfeast",
		"bloody mess", "blooded sword", "blooming rose",
		// distance 1
		"blot", "bloated", "blossom",
		// distance 2
		"blade", "bleed", "blue reverberation",
	}, svc.Autocomplete("bloo"))
}

func TestAutocompleteN_Caps(t *testing.T) {
	svc := autocompleteService(t)
	got := svc.AutocompleteN("bloo", DefaultAutocompleteLimit)
	assert.LessOrEqual(t, len(got), DefaultAutocompleteLimit)
	assert.Len(t, got, 5)
	assert.Len(t, svc.AutocompleteN("bloo", 0), len(svc.Autocomplete("bloo")))
}

func TestAutocomplete_ExcludesFarEntries(t *testing.T) {
	svc := autocompleteService(t)
	got := svc.Autocomplete("bloo")
	assert.NotContains(t, got, "slash")
	assert.Contains(t, got, "blade") // "blad" is two edits from "bloo"
}

func TestAutocomplete_WhitespaceInsensitive(t *testing.T) {
	svc := autocompleteService(t)
	got := svc.AutocompleteN("bloodm", 2)
	assert.Equal(t, []string{"blood mist", "blood moon"}, got)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
	ac       int
}

func (r *recordingObserver) ObserveLookup(o Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recordingObserver) ObserveAutocomplete(int, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ac++
}

func TestService_Observer(t *testing.T) {
	obs := &recordingObserver{}
	svc := newTestService(t, bloodbathData(), Options{Observer: obs})

	svc.Lookup("bloodbath", ports.LocaleEN)
	svc.Lookup("blodbath", ports.LocaleEN)
	svc.Lookup("zzzzzzzz", ports.LocaleEN)
	svc.Autocomplete("blo")

	assert.Equal(t, []Outcome{OutcomeExact, OutcomeFuzzy, OutcomeNotFound}, obs.outcomes)
	assert.Equal(t, 1, obs.ac)
}

func TestService_ConcurrentReaders(t *testing.T) {
	svc := autocompleteService(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := svc.Lookup("bloodbth", ports.LocaleEN)
				assert.NoError(t, err)
				assert.NotEmpty(t, svc.AutocompleteN("blo", 5))
			}
		}()
	}
	wg.Wait()
}

func TestService_Stats(t *testing.T) {
	svc := newTestService(t, bloodbathData(), Options{})
	st := svc.Stats()
	assert.Equal(t, 4, st.Entities)
	assert.Equal(t, 1, st.Disambiguations)
	assert.Equal(t, svc.Snapshot().Index.Len(), st.Keys)
}

func TestService_Answer(t *testing.T) {
	svc := newTestService(t, bloodbathData(), Options{})

	a, err := svc.Answer("bloodbath", ports.LocaleEN)
	require.NoError(t, err)
	assert.True(t, a.Found)
	require.NotNil(t, a.Disambiguation)
	assert.Nil(t, a.Entity)

	a, err = svc.Answer("roland", ports.LocaleKR)
	require.NoError(t, err)
	require.NotNil(t, a.Entity)
	assert.Equal(t, ports.LocaleKR, a.Entity.Header().Locale)
	assert.Nil(t, a.Disambiguation)

	a, err = svc.Answer("zzzzzzzz", ports.LocaleEN)
	require.NoError(t, err)
	assert.False(t, a.Found)
}
