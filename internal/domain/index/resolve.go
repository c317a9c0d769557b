package index

import (
	"fmt"
	"slices"
	"strings"

	"github.com/corey/lor/internal/domain/query"
	"github.com/corey/lor/internal/logging"
	"github.com/corey/lor/internal/ports"
)

// ReleaseGroupPolicy picks the release group shown on a disambiguation
// placeholder.
type ReleaseGroupPolicy string

const (
	// SecondEarliest uses the second-smallest distinct group among the
	// candidates, or the only one. The earliest is usually a demo entity.
	SecondEarliest ReleaseGroupPolicy = "second-earliest"
	Earliest       ReleaseGroupPolicy = "earliest"
)

// ParseReleaseGroupPolicy accepts "second-earliest" (or "") and "earliest".
func ParseReleaseGroupPolicy(s string) (ReleaseGroupPolicy, error) {
	switch ReleaseGroupPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SecondEarliest:
		return SecondEarliest, nil
	case Earliest:
		return Earliest, nil
	}
	return "", fmt.Errorf("unknown release group policy %q", s)
}

// Pick applies the policy to the candidates' release groups.
func (p ReleaseGroupPolicy) Pick(results []ports.LookupResult) ports.ReleaseGroup {
	var groups []ports.ReleaseGroup
	for _, r := range results {
		if !slices.Contains(groups, r.ReleaseGroup) {
			groups = append(groups, r.ReleaseGroup)
		}
	}
	if len(groups) == 0 {
		return ports.LibraryOfRuina
	}
	slices.Sort(groups)
	if p == Earliest || len(groups) == 1 {
		return groups[0]
	}
	return groups[1]
}

// ResolveOptions controls the resolver.
type ResolveOptions struct {
	// Collectables may be nil, meaning nothing is collectable.
	Collectables ports.Collectables
	Policy       ReleaseGroupPolicy
	Logger       logging.Logger
}

// ResolveReport counts which strategy placed each candidate.
type ResolveReport struct {
	Sets                int
	KindSuffixes        int
	CollectableSuffixes int
	Fallbacks           int
}

type strategy int

const (
	byKind strategy = iota
	byCollectable
	byEntityID
)

type resolver struct {
	final *ports.QueryIndex
	opts  ResolveOptions
	log   logging.Logger
	rep   ResolveReport
}

// Resolve gives every candidate of every set its own suffixed key and
// replaces the collided key, for that locale only, with one
// KindDisambiguation placeholder whose EntityID is the set ID.
//
// raw is not modified; the returned index is new. Each set is drained
// (LookupResults ends empty) and its placed candidates are recorded in
// Resolved. Passing an already-resolved set returns ErrSetAlreadyResolved.
func Resolve(raw *ports.QueryIndex, sets []*ports.AmbiguousResultSet, opts ResolveOptions) (*ports.QueryIndex, ResolveReport, error) {
	r := &resolver{final: raw.Clone(), opts: opts, log: opts.Logger}
	if r.log == nil {
		r.log = logging.NewNopLogger()
	}
	if r.opts.Policy == "" {
		r.opts.Policy = SecondEarliest
	}
	for _, set := range sets {
		if !set.MarkResolved() {
			return nil, r.rep, fmt.Errorf("%w: %s", ErrSetAlreadyResolved, set.ID)
		}
		r.resolveSet(set)
		r.rep.Sets++
	}
	return r.final, r.rep, nil
}

func (r *resolver) resolveSet(set *ports.AmbiguousResultSet) {
	original := slices.Clone(set.LookupResults)
	for len(set.LookupResults) > 0 {
		cand := set.LookupResults[0]
		key, placed, how := r.place(set, original, cand)
		switch how {
		case byKind:
			r.rep.KindSuffixes++
		case byCollectable:
			r.rep.CollectableSuffixes++
		case byEntityID:
			r.rep.Fallbacks++
		}
		r.final.Append(key, placed)
		set.LookupResults = set.LookupResults[1:]
		set.Resolved = append(set.Resolved, placed)
	}
	set.LookupResults = []ports.LookupResult{}

	placeholder := ports.LookupResult{
		Query:        set.Query,
		DisplayQuery: original[0].DisplayQuery,
		ReleaseGroup: r.opts.Policy.Pick(original),
		Locale:       set.Locale,
		Kind:         ports.KindDisambiguation,
		EntityID:     set.ID,
	}
	existing := r.final.Get(set.Query)
	kept := make([]ports.LookupResult, 0, len(existing))
	inserted := false
	for _, res := range existing {
		if res.Locale != set.Locale {
			kept = append(kept, res)
			continue
		}
		if !inserted {
			kept = append(kept, placeholder)
			inserted = true
		}
	}
	r.final.Set(set.Query, kept)
}

// place picks the first strategy whose suffixed key is still free for the
// set's locale. Kind and collectable uniqueness are judged against the set
// as detected, so two same-kind candidates never take turns at one suffix.
// The collectable suffix additionally requires the candidate to be the only
// collectable of its kind in the set; membership alone is not enough.
func (r *resolver) place(set *ports.AmbiguousResultSet, original []ports.LookupResult, cand ports.LookupResult) (string, ports.LookupResult, strategy) {
	if countKind(original, cand.Kind) == 1 {
		if key, res, ok := r.trySuffix(set.Locale, cand, KindSuffix(cand.Kind, set.Locale)); ok {
			return key, res, byKind
		}
	}
	if r.isCollectable(cand) && r.countCollectable(original, cand.Kind) == 1 {
		if key, res, ok := r.trySuffix(set.Locale, cand, CollectableSuffix(set.Locale)); ok {
			return key, res, byCollectable
		}
	}

	r.log.Warn("falling back to entity id suffix",
		logging.F("query", set.Query),
		logging.F("locale", string(set.Locale)),
		logging.F("kind", cand.Kind.String()),
		logging.F("entity_id", cand.EntityID),
		logging.Err(ErrAmbiguousSetExhausted))

	candidates := []string{cand.EntityID, KindSuffix(cand.Kind, set.Locale) + " " + cand.EntityID}
	for _, suffix := range candidates {
		if key, res, ok := r.trySuffix(set.Locale, cand, suffix); ok {
			return key, res, byEntityID
		}
	}
	for n := 2; ; n++ {
		if key, res, ok := r.trySuffix(set.Locale, cand, fmt.Sprintf("%s #%d", cand.EntityID, n)); ok {
			return key, res, byEntityID
		}
	}
}

func (r *resolver) trySuffix(locale ports.Locale, cand ports.LookupResult, suffix string) (string, ports.LookupResult, bool) {
	key, display := query.Display(cand.Display() + " (" + suffix + ")")
	if len(r.final.ForLocale(key, locale)) > 0 {
		return "", ports.LookupResult{}, false
	}
	cand.Query = key
	cand.DisplayQuery = display
	return key, cand, true
}

func (r *resolver) isCollectable(cand ports.LookupResult) bool {
	if r.opts.Collectables == nil {
		return false
	}
	if cand.Kind != ports.KindCombatPage && cand.Kind != ports.KindKeyPage {
		return false
	}
	return r.opts.Collectables.IsCollectable(cand.Kind, cand.EntityID)
}

func (r *resolver) countCollectable(results []ports.LookupResult, kind ports.Kind) int {
	n := 0
	for _, res := range results {
		if res.Kind == kind && r.isCollectable(res) {
			n++
		}
	}
	return n
}

func countKind(results []ports.LookupResult, kind ports.Kind) int {
	n := 0
	for _, r := range results {
		if r.Kind == kind {
			n++
		}
	}
	return n
}
