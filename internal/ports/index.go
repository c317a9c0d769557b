package ports

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LookupResult is one candidate stored under an index key.
// EntityID, Kind and Locale together identify the originating entity.
// For KindDisambiguation, EntityID is an AmbiguousResultSet ID.
type LookupResult struct {
	Query        string       `json:"query"`
	DisplayQuery string       `json:"displayQuery,omitempty"`
	ReleaseGroup ReleaseGroup `json:"releaseGroup"`
	Locale       Locale       `json:"locale"`
	Kind         Kind         `json:"kind"`
	EntityID     string       `json:"entityId"`
}

// Display returns the human-facing query text.
func (r LookupResult) Display() string {
	if r.DisplayQuery != "" {
		return r.DisplayQuery
	}
	return r.Query
}

// AmbiguousResultSet records one (query, locale) collision. The resolver
// drains LookupResults and appends each placed candidate to Resolved, which
// is the payload shown behind the disambiguation placeholder.
type AmbiguousResultSet struct {
	ID            string         `json:"id"`
	Locale        Locale         `json:"locale"`
	Query         string         `json:"query"`
	LookupResults []LookupResult `json:"lookupResults"`
	Resolved      []LookupResult `json:"resolved"`

	done bool
}

// IsResolved reports whether the set has already been through the resolver.
func (s *AmbiguousResultSet) IsResolved() bool {
	return s.done || len(s.Resolved) > 0
}

// MarkResolved flips the one-shot flag. It returns false if the set was
// already resolved.
func (s *AmbiguousResultSet) MarkResolved() bool {
	if s.IsResolved() {
		return false
	}
	s.done = true
	return true
}

// QueryIndex maps canonical query keys to candidate lists. Key order is
// insertion order and is preserved through JSON.
type QueryIndex struct {
	keys    []string
	entries map[string][]LookupResult
}

// NewQueryIndex creates an empty index.
func NewQueryIndex() *QueryIndex {
	return &QueryIndex{entries: make(map[string][]LookupResult)}
}

// Get returns the candidates stored under key. The slice must not be modified.
func (q *QueryIndex) Get(key string) []LookupResult {
	return q.entries[key]
}

// Has reports whether key is present.
func (q *QueryIndex) Has(key string) bool {
	_, ok := q.entries[key]
	return ok
}

// ForLocale returns the candidates under key that belong to locale.
func (q *QueryIndex) ForLocale(key string, locale Locale) []LookupResult {
	var out []LookupResult
	for _, r := range q.entries[key] {
		if r.Locale == locale {
			out = append(out, r)
		}
	}
	return out
}

// Keys returns a copy of the keys in insertion order.
func (q *QueryIndex) Keys() []string {
	out := make([]string, len(q.keys))
	copy(out, q.keys)
	return out
}

// Len returns the number of keys.
func (q *QueryIndex) Len() int {
	return len(q.keys)
}

// Append adds r under key, creating the key if absent.
func (q *QueryIndex) Append(key string, r LookupResult) {
	if _, ok := q.entries[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.entries[key] = append(q.entries[key], r)
}

// Set replaces the candidates under key. A new key goes to the end.
func (q *QueryIndex) Set(key string, results []LookupResult) {
	if _, ok := q.entries[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.entries[key] = results
}

// Clone returns a deep copy.
func (q *QueryIndex) Clone() *QueryIndex {
	c := &QueryIndex{
		keys:    make([]string, len(q.keys)),
		entries: make(map[string][]LookupResult, len(q.entries)),
	}
	copy(c.keys, q.keys)
	for k, rs := range q.entries {
		c.entries[k] = append([]LookupResult(nil), rs...)
	}
	return c
}

func (q *QueryIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range q.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		rs := q.entries[k]
		if rs == nil {
			rs = []LookupResult{}
		}
		vb, err := json.Marshal(rs)
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (q *QueryIndex) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("query index: expected object, got %v", tok)
	}
	q.keys = nil
	q.entries = make(map[string][]LookupResult)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("query index: expected key, got %v", tok)
		}
		if q.Has(key) {
			return fmt.Errorf("query index: duplicate key %q", key)
		}
		var rs []LookupResult
		if err := dec.Decode(&rs); err != nil {
			return fmt.Errorf("query index %q: %w", key, err)
		}
		if rs == nil {
			rs = []LookupResult{}
		}
		q.Set(key, rs)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Vocabulary is the flat autocomplete pool. It always equals the keys of
// the index it was derived from.
type Vocabulary struct {
	Data []string `json:"data"`
}

// VocabularyOf derives the vocabulary of idx.
func VocabularyOf(idx *QueryIndex) Vocabulary {
	return Vocabulary{Data: idx.Keys()}
}
