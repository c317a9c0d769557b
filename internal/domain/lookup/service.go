// Package lookup answers exact, fuzzy and autocomplete queries over a
// published snapshot. A Service never mutates its snapshot and is safe for
// any number of concurrent readers.
package lookup

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/corey/lor/internal/domain/query"
	"github.com/corey/lor/internal/ports"
)

// ErrNotFound means no key matched, exactly or within FuzzyThreshold.
// Callers render it as an empty result.
var ErrNotFound = errors.New("not found")

const (
	// FuzzyThreshold is the largest edit distance accepted by Lookup and
	// Autocomplete, measured on autocomplete-normalized strings.
	FuzzyThreshold = 2

	// DefaultAutocompleteLimit is the result cap applied by presentation layers.
	DefaultAutocompleteLimit = 5

	DefaultCacheSize = 1024
)

// Outcome classifies a lookup for observers.
type Outcome string

const (
	OutcomeExact    Outcome = "exact"
	OutcomeFuzzy    Outcome = "fuzzy"
	OutcomeNotFound Outcome = "not_found"
)

// Observer receives timing for every query. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveLookup(outcome Outcome, elapsed time.Duration)
	ObserveAutocomplete(results int, elapsed time.Duration)
}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	FuzzyThreshold int
	// CacheSize bounds the fuzzy-match memo. Negative disables it.
	CacheSize int
	Observer  Observer
}

// Service serves one snapshot.
type Service struct {
	snap      *ports.Snapshot
	vocab     []string
	acForms   []string
	sets      map[string]*ports.AmbiguousResultSet
	fuzzy     *lru.Cache[string, string]
	threshold int
	obs       Observer
}

// NewService prepares snap for querying. The vocabulary is normalized once
// here so queries only normalize their own input.
func NewService(snap *ports.Snapshot, opts Options) *Service {
	if snap.Index == nil {
		cp := *snap
		cp.Index = ports.NewQueryIndex()
		snap = &cp
	}
	// Keys with no results (partial or hand-edited snapshots) are never
	// offered as matches.
	vocab := make([]string, 0, len(snap.Vocabulary.Data))
	for _, v := range snap.Vocabulary.Data {
		if len(snap.Index.Get(v)) > 0 {
			vocab = append(vocab, v)
		}
	}
	s := &Service{
		snap:      snap,
		vocab:     vocab,
		acForms:   make([]string, len(vocab)),
		sets:      make(map[string]*ports.AmbiguousResultSet, len(snap.Disambiguations)),
		threshold: opts.FuzzyThreshold,
		obs:       opts.Observer,
	}
	if s.threshold <= 0 {
		s.threshold = FuzzyThreshold
	}
	for i, v := range s.vocab {
		s.acForms[i] = query.AutocompleteForm(v)
	}
	for _, set := range snap.Disambiguations {
		s.sets[set.ID] = set
	}
	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		// lru.New only fails for non-positive sizes.
		s.fuzzy, _ = lru.New[string, string](size)
	}
	return s
}

// Snapshot returns the snapshot being served.
func (s *Service) Snapshot() *ports.Snapshot {
	return s.snap
}

// Lookup resolves q to one result. An exact key hit wins; otherwise the
// nearest vocabulary key is used when it is within the fuzzy threshold.
// Among candidates under the key, the preferred locale wins, else the first.
func (s *Service) Lookup(q string, preferred ports.Locale) (ports.LookupResult, error) {
	start := time.Now()
	key := query.LookupKey(q)
	if key == "" {
		s.observeLookup(OutcomeNotFound, start)
		return ports.LookupResult{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}
	if r, ok := pick(s.snap.Index.Get(key), preferred); ok {
		s.observeLookup(OutcomeExact, start)
		return r, nil
	}
	if matched, ok := s.fuzzyMatch(key); ok {
		if r, ok := pick(s.snap.Index.Get(matched), preferred); ok {
			s.observeLookup(OutcomeFuzzy, start)
			return r, nil
		}
	}
	s.observeLookup(OutcomeNotFound, start)
	return ports.LookupResult{}, fmt.Errorf("%w: %q", ErrNotFound, q)
}

// fuzzyMatch finds the nearest key and checks it on the whitespace-free
// profile. Misses are memoized as "".
func (s *Service) fuzzyMatch(key string) (string, bool) {
	if s.fuzzy != nil {
		if v, ok := s.fuzzy.Get(key); ok {
			return v, v != ""
		}
	}
	m := query.GetMatcher()
	defer query.PutMatcher(m)

	best, d := m.Closest(key, s.vocab)
	if d < 0 || m.Distance(query.AutocompleteForm(key), query.AutocompleteForm(best)) > s.threshold {
		best = ""
	}
	if s.fuzzy != nil {
		s.fuzzy.Add(key, best)
	}
	return best, best != ""
}

// pick reports false for an empty candidate list.
func pick(rs []ports.LookupResult, preferred ports.Locale) (ports.LookupResult, bool) {
	if len(rs) == 0 {
		return ports.LookupResult{}, false
	}
	for _, r := range rs {
		if r.Locale == preferred {
			return r, true
		}
	}
	return rs[0], true
}

type scored struct {
	entry string
	dist  int
	runes int
}

// Autocomplete ranks every vocabulary key whose leading runes are within
// the threshold of prefix, by (distance, length, lexicographic). The full
// list is returned; callers cap it (see DefaultAutocompleteLimit).
func (s *Service) Autocomplete(prefix string) []string {
	start := time.Now()
	p := query.AutocompleteForm(prefix)

	m := query.GetMatcher()
	var hits []scored
	for i, entry := range s.vocab {
		if d := m.PrefixDistance(p, s.acForms[i]); d <= s.threshold {
			hits = append(hits, scored{entry: entry, dist: d, runes: utf8.RuneCountInString(entry)})
		}
	}
	query.PutMatcher(m)

	sortScored(hits)
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.entry
	}
	if s.obs != nil {
		s.obs.ObserveAutocomplete(len(out), time.Since(start))
	}
	return out
}

// AutocompleteN is Autocomplete capped at n entries. n <= 0 means no cap.
func (s *Service) AutocompleteN(prefix string, n int) []string {
	out := s.Autocomplete(prefix)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Disambiguation returns the set behind a KindDisambiguation result.
func (s *Service) Disambiguation(id string) (*ports.AmbiguousResultSet, error) {
	set, ok := s.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: disambiguation %q", ErrNotFound, id)
	}
	return set, nil
}

// Entity returns the entity a result points at.
func (s *Service) Entity(r ports.LookupResult) (ports.Entity, error) {
	if r.Kind == ports.KindDisambiguation {
		return nil, fmt.Errorf("%w: %q is a disambiguation", ErrNotFound, r.EntityID)
	}
	e, ok := s.snap.Entities.Get(ports.RefOf(r))
	if !ok {
		return nil, fmt.Errorf("%w: %s %s/%s", ErrNotFound, r.Locale, r.Kind, r.EntityID)
	}
	return e, nil
}

// Stats summarizes the served snapshot.
type Stats struct {
	Keys            int
	Entities        int
	Disambiguations int
	CreatedAt       time.Time
}

// Stats returns counts for health endpoints.
func (s *Service) Stats() Stats {
	return Stats{
		Keys:            s.snap.Index.Len(),
		Entities:        s.snap.Entities.Len(),
		Disambiguations: len(s.sets),
		CreatedAt:       s.snap.Manifest.CreatedAt,
	}
}

func (s *Service) observeLookup(o Outcome, start time.Time) {
	if s.obs != nil {
		s.obs.ObserveLookup(o, time.Since(start))
	}
}

// Answer is a lookup rendered for presentation: the matched result plus
// whatever it points at.
type Answer struct {
	Found          bool
	Result         ports.LookupResult
	Entity         ports.Entity
	Disambiguation *ports.AmbiguousResultSet
}

// Answer runs Lookup and attaches the entity or disambiguation set.
// ErrNotFound becomes an Answer with Found false and a nil error.
func (s *Service) Answer(q string, preferred ports.Locale) (Answer, error) {
	r, err := s.Lookup(q, preferred)
	if errors.Is(err, ErrNotFound) {
		return Answer{}, nil
	}
	if err != nil {
		return Answer{}, err
	}
	a := Answer{Found: true, Result: r}
	if r.Kind == ports.KindDisambiguation {
		a.Disambiguation, err = s.Disambiguation(r.EntityID)
	} else {
		a.Entity, err = s.Entity(r)
	}
	if err != nil {
		return Answer{}, fmt.Errorf("dangling result %s/%s: %w", r.Kind, r.EntityID, err)
	}
	return a, nil
}
