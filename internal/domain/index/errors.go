// Package index turns per-locale entities into a query index in which every
// key resolves, per locale, to one entity or one disambiguation placeholder.
//
// The pipeline is Build → Detect → Resolve. Build and Detect never mutate
// their input; Resolve returns a new final index and leaves the raw one alone.
package index

import (
	"errors"
	"fmt"

	"github.com/corey/lor/internal/ports"
)

var (
	// ErrMalformedEntity marks input missing an ID, a name, or with the wrong locale.
	ErrMalformedEntity = errors.New("malformed entity")

	// ErrAmbiguousSetExhausted is logged when a candidate gets no kind or
	// collectable suffix and falls back to its entity ID.
	ErrAmbiguousSetExhausted = errors.New("ambiguous set exhausted")

	// ErrSetAlreadyResolved is returned when a set is passed to Resolve twice.
	ErrSetAlreadyResolved = errors.New("ambiguous set already resolved")
)

// EntityError describes one malformed entity.
type EntityError struct {
	Locale ports.Locale
	Kind   ports.Kind
	ID     string
	Reason string
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s: %s %s/%q: %s", ErrMalformedEntity, e.Locale, e.Kind, e.ID, e.Reason)
}

func (e *EntityError) Unwrap() error { return ErrMalformedEntity }
