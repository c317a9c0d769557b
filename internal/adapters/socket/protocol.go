// Package socket implements a JSON-over-Unix-socket protocol for the lor daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/corey/lor/internal/domain/lookup"
	"github.com/corey/lor/internal/ports"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/lor-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/lor-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodLookup         = "lookup"
	MethodAutocomplete   = "autocomplete"
	MethodDisambiguation = "disambiguation"
	MethodHealth         = "health"
	MethodReindex        = "reindex"
	MethodShutdown       = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// LookupParams is the params for a lookup request. Locale accepts locale
// codes (en, kr) and client locales (en-US, ko); unknown values mean English.
type LookupParams struct {
	Query  string `json:"query"`
	Locale string `json:"locale,omitempty"`
}

// LookupResult is the result of a lookup request. A miss is Found false,
// never an error.
type LookupResult struct {
	Found          bool                      `json:"found"`
	Result         *ports.LookupResult       `json:"result,omitempty"`
	Entity         json.RawMessage           `json:"entity,omitempty"`
	Disambiguation *ports.AmbiguousResultSet `json:"disambiguation,omitempty"`
	Elapsed        string                    `json:"elapsed"`
}

// NewLookupResult renders a. The entity is embedded as raw JSON so clients
// can decode it by kind.
func NewLookupResult(a lookup.Answer) (LookupResult, error) {
	out := LookupResult{Found: a.Found, Disambiguation: a.Disambiguation}
	if !a.Found {
		return out, nil
	}
	r := a.Result
	out.Result = &r
	if a.Entity != nil {
		raw, err := json.Marshal(a.Entity)
		if err != nil {
			return LookupResult{}, fmt.Errorf("marshal entity: %w", err)
		}
		out.Entity = raw
	}
	return out, nil
}

// DecodeEntity returns the typed entity carried by a hit, or nil for a miss
// or a disambiguation.
func (r *LookupResult) DecodeEntity() (ports.Entity, error) {
	if !r.Found || r.Result == nil || len(r.Entity) == 0 {
		return nil, nil
	}
	return ports.DecodeEntity(r.Result.Kind, r.Entity)
}

// AutocompleteParams is the params for an autocomplete request.
// Limit <= 0 means the server default.
type AutocompleteParams struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit,omitempty"`
}

// AutocompleteResult is the result of an autocomplete request.
type AutocompleteResult struct {
	Entries []string `json:"entries"`
}

// DisambiguationParams is the params for a disambiguation request.
type DisambiguationParams struct {
	ID string `json:"id"`
}

// DisambiguationResult is the result of a disambiguation request.
type DisambiguationResult struct {
	Found bool                      `json:"found"`
	Set   *ports.AmbiguousResultSet `json:"set,omitempty"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status          string `json:"status"`
	Keys            int    `json:"keys"`
	Entities        int    `json:"entities"`
	Disambiguations int    `json:"disambiguations"`
	BuiltAt         string `json:"built_at,omitempty"`
	Uptime          string `json:"uptime"`
}

// ReindexResult is the result of a reindex request.
type ReindexResult struct {
	Entities      int    `json:"entities"`
	Skipped       int    `json:"skipped"`
	Keys          int    `json:"keys"`
	AmbiguousSets int    `json:"ambiguous_sets"`
	Fallbacks     int    `json:"fallbacks"`
	Elapsed       string `json:"elapsed"`
}

// decodeParams re-marshals loosely typed params into target.
func decodeParams(params any, target any) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
