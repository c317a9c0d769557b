package query

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKey_LowercasesAndTrims(t *testing.T) {
	assert.Equal(t, "bloodbath", LookupKey("  Bloodbath \n"))
}

func TestLookupKey_Empty(t *testing.T) {
	assert.Equal(t, "", LookupKey(""))
	assert.Equal(t, "", LookupKey("   "))
	assert.Equal(t, "", AutocompleteForm(""))
}

func TestLookupKey_FoldsSpecialCharacters(t *testing.T) {
	assert.Equal(t, "funeral of the dead butterflies iii", LookupKey("Funeral of the Dead Butterflies Ⅲ"))
	assert.Equal(t, "roland's gloves", LookupKey("Roland’s Gloves"))
	assert.Equal(t, "line\nbreak", LookupKey("Line\r\nBreak"))
}

func TestLookupKey_NonLatin(t *testing.T) {
	assert.Equal(t, "피바다", LookupKey(" 피바다 "))
	assert.Equal(t, "éclair", LookupKey("Éclair"))
}

func TestDisplay_OnlyWhenDifferent(t *testing.T) {
	key, display := Display("Bloodbath")
	assert.Equal(t, "bloodbath", key)
	assert.Equal(t, "Bloodbath", display)

	key, display = Display("bloodbath")
	assert.Equal(t, "bloodbath", key)
	assert.Equal(t, "", display)
}

func TestAutocompleteForm_StripsAllWhitespace(t *testing.T) {
	assert.Equal(t, "blacksilence", AutocompleteForm("Black \t Silence"))
	assert.Equal(t, "degradedpillar", AutocompleteForm("Degraded  Pillar"))
	// Ideographic space is whitespace too.
	assert.Equal(t, "黑沉默", AutocompleteForm("黑　沉默"))
}

func TestAutocompleteForm_DistinctFromLookupKey(t *testing.T) {
	assert.NotEqual(t, LookupKey("Black Silence"), AutocompleteForm("Black Silence"))
}

func TestDistance_Identity(t *testing.T) {
	for _, s := range []string{"", "a", "bloodbath", "피바다", "黑沉默"} {
		assert.Equal(t, 0, Distance(s, s), s)
		assert.Equal(t, len([]rune(s)), Distance("", s), s)
	}
}

func TestDistance_Known(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"blodbath", "bloodbath", 1},
		{"bloodbath", "bloodbath (combat page)", 14},
		{"피바다", "피바라", 1},
		{"abc", "", 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Distance(c.a, c.b), "%q vs %q", c.a, c.b)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	words := []string{"", "a", "ab", "bloodbath", "blood bath", "battle", "피바다", "emotion"}
	for _, a := range words {
		for _, b := range words {
			assert.Equal(t, Distance(a, b), Distance(b, a), "%q vs %q", a, b)
		}
	}
}

func TestDistance_ClipsLongInput(t *testing.T) {
	long := strings.Repeat("a", MaxQueryRunes+100)
	assert.Equal(t, 0, Distance(long, strings.Repeat("a", MaxQueryRunes)))
}

func TestMatcher_ReusesBuffers(t *testing.T) {
	m := NewMatcher()
	m.Distance("bloodbath", "bloodbath (abnormality page)")
	rowCap := cap(m.row)

	allocs := testing.AllocsPerRun(50, func() {
		m.Distance("bloodbath", "blodbath")
	})
	assert.Zero(t, allocs)
	assert.Equal(t, rowCap, cap(m.row))
}

func TestMatcher_PrefixDistance(t *testing.T) {
	m := NewMatcher()
	assert.Equal(t, 0, m.PrefixDistance("bloo", "bloodbath"))
	assert.Equal(t, 1, m.PrefixDistance("blod", "bloodbath"))
	assert.Equal(t, 1, m.PrefixDistance("bloo", "blo"))
}

func TestClosest_FirstOccurrenceWins(t *testing.T) {
	vocab := []string{"bloodbath (combat page)", "bloodbath (abnormality page)", "blood"}
	best, d := Closest("bloodbath (combat pag)", vocab)
	assert.Equal(t, "bloodbath (combat page)", best)
	assert.Equal(t, 1, d)

	best, d = Closest("xx", []string{"ab", "ba"})
	assert.Equal(t, "ab", best)
	assert.Equal(t, 2, d)
}

func TestClosest_EmptyVocabulary(t *testing.T) {
	best, d := Closest("x", nil)
	assert.Equal(t, "", best)
	assert.Equal(t, -1, d)
}

func TestDistance_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, 3, Distance("kitten", "sitting"))
			}
		}()
	}
	wg.Wait()
}
