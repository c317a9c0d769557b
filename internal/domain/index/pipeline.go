package index

import (
	"context"
	"time"

	"github.com/corey/lor/internal/logging"
	"github.com/corey/lor/internal/ports"
)

// Options configures a full pipeline run.
type Options struct {
	SkipMalformed bool
	Collectables  ports.Collectables
	Policy        ReleaseGroupPolicy
	Logger        logging.Logger
}

// Report summarizes a pipeline run.
type Report struct {
	Entities            int
	Skipped             int
	Keys                int
	AmbiguousSets       int
	KindSuffixes        int
	CollectableSuffixes int
	Fallbacks           int
}

// Result is the final, collision-free output of Run.
type Result struct {
	Index           *ports.QueryIndex
	Vocabulary      ports.Vocabulary
	Disambiguations []*ports.AmbiguousResultSet
	Entities        *ports.EntityTable
	Report          Report
}

// Run executes Build, Detect and Resolve. Detect and Resolve run on the
// calling goroutine after every locale has been merged.
func Run(ctx context.Context, perLocale map[ports.Locale][]ports.Entity, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	built, err := Build(ctx, perLocale, BuildOptions{SkipMalformed: opts.SkipMalformed, Logger: log})
	if err != nil {
		return nil, err
	}
	sets := Detect(built.Index)
	final, rep, err := Resolve(built.Index, sets, ResolveOptions{
		Collectables: opts.Collectables,
		Policy:       opts.Policy,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Index:           final,
		Vocabulary:      ports.VocabularyOf(final),
		Disambiguations: sets,
		Entities:        built.Entities,
		Report: Report{
			Entities:            built.Entities.Len(),
			Skipped:             built.Skipped,
			Keys:                final.Len(),
			AmbiguousSets:       len(sets),
			KindSuffixes:        rep.KindSuffixes,
			CollectableSuffixes: rep.CollectableSuffixes,
			Fallbacks:           rep.Fallbacks,
		},
	}
	log.Debug("index pipeline complete",
		logging.F("entities", res.Report.Entities),
		logging.F("keys", res.Report.Keys),
		logging.F("ambiguous_sets", res.Report.AmbiguousSets),
		logging.F("fallbacks", res.Report.Fallbacks))
	return res, nil
}

// Snapshot packages the result for publication.
func (r *Result) Snapshot(sourceDir string, now time.Time) *ports.Snapshot {
	return &ports.Snapshot{
		Manifest: ports.Manifest{
			Version:        ports.SnapshotVersion,
			CreatedAt:      now.UTC(),
			SourceDir:      sourceDir,
			EntityCount:    r.Report.Entities,
			SkippedCount:   r.Report.Skipped,
			KeyCount:       r.Report.Keys,
			AmbiguousCount: r.Report.AmbiguousSets,
			FallbackCount:  r.Report.Fallbacks,
		},
		Index:           r.Index,
		Vocabulary:      r.Vocabulary,
		Disambiguations: r.Disambiguations,
		Entities:        r.Entities,
	}
}
