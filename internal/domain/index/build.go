package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/corey/lor/internal/domain/query"
	"github.com/corey/lor/internal/logging"
	"github.com/corey/lor/internal/ports"
	"golang.org/x/sync/errgroup"
)

// BuildOptions controls the index builder.
type BuildOptions struct {
	// SkipMalformed logs and drops malformed entities instead of aborting.
	SkipMalformed bool
	Logger        logging.Logger
}

// BuildResult is the raw, possibly colliding, index.
type BuildResult struct {
	Index      *ports.QueryIndex
	Vocabulary ports.Vocabulary
	Entities   *ports.EntityTable
	Skipped    int
}

type keyedResult struct {
	key    string
	result ports.LookupResult
	entity ports.Entity
}

type localeBuild struct {
	results []keyedResult
	skipped int
	err     error
}

// Build indexes every entity under its lookup key. Locales are processed
// concurrently and merged in AllLocales order, so the result is identical
// to a sequential pass: locales, then kinds in QueryableKinds order, then
// entities in their given order. Collisions are kept.
func Build(ctx context.Context, perLocale map[ports.Locale][]ports.Entity, opts BuildOptions) (*BuildResult, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	for l, ents := range perLocale {
		if !l.Valid() && len(ents) > 0 {
			return nil, fmt.Errorf("%w: %q", ports.ErrUnknownLocale, l)
		}
	}

	slots := make([]localeBuild, len(ports.AllLocales))
	g, gctx := errgroup.WithContext(ctx)
	for i, locale := range ports.AllLocales {
		ents := perLocale[locale]
		if len(ents) == 0 {
			continue
		}
		g.Go(func() error {
			slots[i] = buildLocale(gctx, locale, ents, opts.SkipMalformed, log)
			return slots[i].err
		})
	}
	waitErr := g.Wait()

	out := &BuildResult{
		Index:    ports.NewQueryIndex(),
		Entities: ports.NewEntityTable(),
	}
	for _, s := range slots {
		if s.err != nil && !errors.Is(s.err, context.Canceled) {
			return nil, s.err
		}
	}
	if waitErr != nil {
		return nil, waitErr
	}
	for _, s := range slots {
		out.Skipped += s.skipped
		for _, kr := range s.results {
			out.Index.Append(kr.key, kr.result)
			out.Entities.Add(kr.entity)
		}
	}
	out.Vocabulary = ports.VocabularyOf(out.Index)
	return out, nil
}

func buildLocale(ctx context.Context, locale ports.Locale, ents []ports.Entity, skip bool, log logging.Logger) localeBuild {
	var lb localeBuild
	for _, kind := range ports.QueryableKinds {
		for _, e := range ents {
			if err := ctx.Err(); err != nil {
				lb.err = err
				return lb
			}
			if e == nil || e.Kind() != kind {
				continue
			}
			kr, err := resultFor(locale, e)
			if err != nil {
				if !skip {
					lb.err = err
					return lb
				}
				log.Warn("skipping malformed entity", logging.F("locale", string(locale)), logging.Err(err))
				lb.skipped++
				continue
			}
			lb.results = append(lb.results, kr)
		}
	}
	// Nil entries have no kind and are caught here.
	for _, e := range ents {
		if e != nil {
			continue
		}
		err := &EntityError{Locale: locale, Reason: "nil entity"}
		if !skip {
			lb.err = err
			return lb
		}
		log.Warn("skipping malformed entity", logging.F("locale", string(locale)), logging.Err(err))
		lb.skipped++
	}
	return lb
}

func resultFor(locale ports.Locale, e ports.Entity) (keyedResult, error) {
	h := e.Header()
	fail := func(reason string) (keyedResult, error) {
		return keyedResult{}, &EntityError{Locale: locale, Kind: e.Kind(), ID: h.ID, Reason: reason}
	}
	if h.ID == "" {
		return fail("missing id")
	}
	if h.Locale != locale {
		return fail(fmt.Sprintf("locale %q filed under %q", h.Locale, locale))
	}
	key, display := query.Display(h.Name)
	if key == "" {
		return fail("missing name")
	}
	return keyedResult{
		key: key,
		result: ports.LookupResult{
			Query:        key,
			DisplayQuery: display,
			ReleaseGroup: h.ReleaseGroup,
			Locale:       locale,
			Kind:         e.Kind(),
			EntityID:     h.ID,
		},
		entity: e,
	}, nil
}
