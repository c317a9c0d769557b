package app

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/corey/lor/internal/adapters/datadir"
	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/config"
	"github.com/corey/lor/internal/domain/index"
	"github.com/corey/lor/internal/logging"
	"github.com/corey/lor/internal/ports"
)

// SnapshotName is the bbolt bucket the daemon and CLI read and write.
const SnapshotName = "current"

// BuildSnapshot loads entities and collectables from dataDir and runs the
// index pipeline. Nothing is persisted.
func BuildSnapshot(ctx context.Context, cfg *config.Config, dataDir string, log logging.Logger) (*index.Result, *ports.Snapshot, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	ents, err := datadir.NewSource(dataDir).LoadEntities(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load entities: %w", err)
	}

	var coll ports.Collectables
	if p := config.Resolve(dataDir, cfg.Build.Collectables); p != "" {
		set, err := datadir.LoadCollectables(p)
		if err != nil {
			return nil, nil, fmt.Errorf("load collectables: %w", err)
		}
		log.Debug("collectables loaded", logging.F("path", p), logging.F("count", set.Len()))
		coll = set
	}

	res, err := index.Run(ctx, ents, index.Options{
		SkipMalformed: cfg.Build.SkipMalformed,
		Collectables:  coll,
		Policy:        cfg.Policy(),
		Logger:        log,
	})
	if err != nil {
		return nil, nil, err
	}
	return res, res.Snapshot(dataDir, time.Now()), nil
}

// ReindexResult converts a pipeline report for clients.
func ReindexResult(rep index.Report, elapsed time.Duration) socket.ReindexResult {
	return socket.ReindexResult{
		Entities:      rep.Entities,
		Skipped:       rep.Skipped,
		Keys:          rep.Keys,
		AmbiguousSets: rep.AmbiguousSets,
		Fallbacks:     rep.Fallbacks,
		Elapsed:       elapsed.Round(time.Millisecond).String(),
	}
}

// dataModTime returns the newest modification time of any data file under dir.
func dataModTime(dir string) time.Time {
	var newest time.Time
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isDataExt(path) {
			return nil
		}
		if info, err := d.Info(); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}
