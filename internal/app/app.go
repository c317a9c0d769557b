// Package app wires the data source, index pipeline, snapshot store and
// servers into the lookup daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/corey/lor/internal/adapters/bbolt"
	fsw "github.com/corey/lor/internal/adapters/fsnotify"
	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/adapters/web"
	"github.com/corey/lor/internal/config"
	"github.com/corey/lor/internal/domain/lookup"
	"github.com/corey/lor/internal/domain/status"
	"github.com/corey/lor/internal/logging"
	"github.com/corey/lor/internal/metrics"
	"github.com/corey/lor/internal/ports"
)

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Settings    *config.Config
	DataDir     string // absolute

	Store     *bbolt.Store
	Watcher   *fsw.Watcher
	Server    *socket.Server
	WebServer *web.Server
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry

	log       logging.Logger
	svc       atomic.Pointer[lookup.Service] // nil until the first snapshot
	rebuildMu sync.Mutex                     // serializes Reindex
	stopOnce  sync.Once

	// Background rebuilds (initial build and watcher-triggered).
	ctx          context.Context
	cancel       context.CancelFunc
	bg           sync.WaitGroup
	timerMu      sync.Mutex
	rebuildTimer *time.Timer
	rebuildDelay time.Duration
	closing      bool
}

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string
	Settings    *config.Config // nil = config.Default()
	Logger      logging.Logger // nil = discard

	SocketPath   string        // default: socket.SocketPath(ProjectRoot)
	RebuildDelay time.Duration // default: RebuildDelay
}

// New creates an App with all dependencies wired and the last persisted
// snapshot published. Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	paths := NewPaths(cfg.ProjectRoot)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create %s: %w", paths.Root, err)
	}
	dbPath := paths.DB
	if settings.DBPath != "" {
		dbPath = config.Resolve(cfg.ProjectRoot, settings.DBPath)
	}

	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	watcher, err := fsw.NewWatcher(log.With(logging.F("component", "watcher")))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ProjectRoot:  cfg.ProjectRoot,
		Paths:        paths,
		Settings:     settings,
		DataDir:      config.Resolve(cfg.ProjectRoot, settings.DataDir),
		Store:        store,
		Watcher:      watcher,
		Metrics:      metrics.New(reg),
		Registry:     reg,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		rebuildDelay: cfg.RebuildDelay,
	}
	if a.rebuildDelay <= 0 {
		a.rebuildDelay = RebuildDelay
	}

	a.loadPersisted()

	sockPath := cfg.SocketPath
	if sockPath == "" {
		sockPath = socket.SocketPath(cfg.ProjectRoot)
	}
	a.Server = socket.NewServer(a, sockPath, log.With(logging.F("component", "socket")))
	a.WebServer = web.NewServer(a, reg, paths.PortFile, log.With(logging.F("component", "web")))

	return a, nil
}

// loadPersisted publishes the stored snapshot. An unreadable snapshot is
// left for the first rebuild to replace.
func (a *App) loadPersisted() {
	snap, err := a.Store.LoadSnapshot(SnapshotName)
	switch {
	case errors.Is(err, bbolt.ErrVersionMismatch):
		a.log.Info("stored snapshot has an older format, rebuilding", logging.Err(err))
		return
	case err != nil:
		a.log.Warn("stored snapshot unreadable, rebuilding", logging.Err(err))
		return
	case snap == nil:
		return
	}
	a.publish(snap)
	a.Metrics.SnapshotLoaded(snap.Manifest.KeyCount, snap.Manifest.AmbiguousCount, snap.Manifest.FallbackCount)
	a.log.Info("snapshot loaded",
		logging.F("keys", snap.Manifest.KeyCount),
		logging.F("built_at", snap.Manifest.CreatedAt))
}

func (a *App) publish(snap *ports.Snapshot) {
	a.svc.Store(lookup.NewService(snap, lookup.Options{
		FuzzyThreshold: a.Settings.Lookup.FuzzyThreshold,
		CacheSize:      a.Settings.Lookup.CacheSize,
		Observer:       a.Metrics,
	}))
}

// writeStatus records the served snapshot and the latest rebuild error in
// .lor/status.json. Failures are logged only.
func (a *App) writeStatus(rebuildErr error) {
	var m ports.Manifest
	if svc := a.svc.Load(); svc != nil {
		m = svc.Snapshot().Manifest
	}
	sd := status.Generate(m, rebuildErr, time.Now())
	if err := status.WriteJSON(a.Paths.Status, sd); err != nil {
		a.log.Warn("write status", logging.F("path", a.Paths.Status), logging.Err(err))
	}
}

// Start begins the daemon (socket server + HTTP server + data watcher) and
// kicks off a rebuild when the published snapshot is missing or older than
// the data files.
func (a *App) Start() error {
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	// HTTP is non-fatal if the port is taken
	httpPort := a.Settings.HTTPPort
	if httpPort == 0 {
		httpPort = web.DefaultPort(a.ProjectRoot)
	}
	if err := a.WebServer.Start(httpPort); err != nil {
		a.log.Warn("HTTP server unavailable", logging.Err(err))
	}
	if err := a.Watcher.Watch(a.DataDir, a.onDataChanged); err != nil {
		a.log.Warn("data watcher unavailable", logging.F("dir", a.DataDir), logging.Err(err))
	}

	if a.stale() {
		a.runInBackground(func(ctx context.Context) {
			if _, err := a.Reindex(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("initial build failed", logging.Err(err))
			}
		})
	}
	return nil
}

func (a *App) stale() bool {
	svc := a.svc.Load()
	if svc == nil {
		return true
	}
	return dataModTime(a.DataDir).After(svc.Snapshot().Manifest.CreatedAt)
}

// Stop cancels pending rebuilds, shuts down the servers and closes the store.
func (a *App) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		a.Watcher.Stop()
		a.stopTimer()
		a.WebServer.Stop()
		a.Server.Stop()
		err = a.Store.Close()
	})
	return err
}

// ShutdownCh is closed when a client asks the daemon to exit.
func (a *App) ShutdownCh() <-chan struct{} {
	return a.Server.ShutdownCh()
}

// Service returns the service for the published snapshot, or nil.
// Implements socket.AppQueries.
func (a *App) Service() *lookup.Service {
	return a.svc.Load()
}

// AutocompleteLimit implements socket.AppQueries.
func (a *App) AutocompleteLimit() int {
	if n := a.Settings.Lookup.AutocompleteLimit; n > 0 {
		return n
	}
	return lookup.DefaultAutocompleteLimit
}

// Reindex rebuilds from the data dir, persists the snapshot, then publishes
// it. On any error the previous snapshot stays published.
// Implements socket.AppQueries.
func (a *App) Reindex(ctx context.Context) (socket.ReindexResult, error) {
	a.rebuildMu.Lock()
	defer a.rebuildMu.Unlock()

	start := time.Now()
	res, snap, err := BuildSnapshot(ctx, a.Settings, a.DataDir, a.log)
	if err == nil {
		if err = a.Store.SaveSnapshot(SnapshotName, snap); err != nil {
			err = fmt.Errorf("save snapshot: %w", err)
		}
	}
	if err != nil {
		a.Metrics.RebuildFailed(time.Since(start))
		a.writeStatus(err)
		return socket.ReindexResult{}, err
	}
	a.publish(snap)
	a.writeStatus(nil)

	elapsed := time.Since(start)
	rep := res.Report
	a.Metrics.RebuildSucceeded(elapsed, rep.Keys, rep.AmbiguousSets, rep.Fallbacks)
	a.log.Info("index rebuilt",
		logging.F("entities", rep.Entities),
		logging.F("skipped", rep.Skipped),
		logging.F("keys", rep.Keys),
		logging.F("ambiguous_sets", rep.AmbiguousSets),
		logging.F("fallbacks", rep.Fallbacks),
		logging.F("elapsed", elapsed))
	return ReindexResult(rep, elapsed), nil
}

