package query

import (
	"sync"
	"unicode/utf8"
)

// MaxQueryRunes caps how much of each input the matcher compares.
// Names in this data set are far shorter; longer input is clipped.
const MaxQueryRunes = 256

// Matcher computes Levenshtein distances with reusable buffers. Once its
// buffers have grown to fit the longest input it stops allocating.
// A Matcher is not safe for concurrent use; see GetMatcher.
type Matcher struct {
	a, b []rune
	row  []int
}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

var matcherPool = sync.Pool{New: func() any { return NewMatcher() }}

// GetMatcher takes a Matcher from the shared pool.
func GetMatcher() *Matcher { return matcherPool.Get().(*Matcher) }

// PutMatcher returns m to the shared pool.
func PutMatcher(m *Matcher) { matcherPool.Put(m) }

// Distance returns the Levenshtein distance between a and b, counting runes.
func (m *Matcher) Distance(a, b string) int {
	m.a = appendRunes(m.a[:0], a, MaxQueryRunes)
	m.b = appendRunes(m.b[:0], b, MaxQueryRunes)
	return m.levenshtein(m.a, m.b)
}

// PrefixDistance compares prefix against entry truncated to the rune
// length of prefix.
func (m *Matcher) PrefixDistance(prefix, entry string) int {
	m.a = appendRunes(m.a[:0], prefix, MaxQueryRunes)
	m.b = appendRunes(m.b[:0], entry, len(m.a))
	return m.levenshtein(m.a, m.b)
}

// Closest returns the vocabulary entry nearest to q and its distance.
// Ties go to the earliest entry. An empty vocabulary yields ("", -1).
func (m *Matcher) Closest(q string, vocab []string) (string, int) {
	best, bestDist := "", -1
	m.a = appendRunes(m.a[:0], q, MaxQueryRunes)
	for _, v := range vocab {
		m.b = appendRunes(m.b[:0], v, MaxQueryRunes)
		d := m.levenshtein(m.a, m.b)
		if bestDist < 0 || d < bestDist {
			best, bestDist = v, d
			if d == 0 {
				break
			}
		}
	}
	return best, bestDist
}

// levenshtein runs the single-row dynamic program over the shorter input.
func (m *Matcher) levenshtein(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}
	if cap(m.row) < len(b)+1 {
		m.row = make([]int, len(b)+1)
	}
	row := m.row[:len(b)+1]
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			above := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(b)]
}

func appendRunes(dst []rune, s string, limit int) []rune {
	for len(s) > 0 && len(dst) < limit {
		r, size := utf8.DecodeRuneInString(s)
		dst = append(dst, r)
		s = s[size:]
	}
	return dst
}

// Distance is Matcher.Distance on a pooled matcher.
func Distance(a, b string) int {
	m := GetMatcher()
	defer PutMatcher(m)
	return m.Distance(a, b)
}

// Closest is Matcher.Closest on a pooled matcher.
func Closest(q string, vocab []string) (string, int) {
	m := GetMatcher()
	defer PutMatcher(m)
	return m.Closest(q, vocab)
}
