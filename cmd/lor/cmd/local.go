package cmd

import (
	"errors"
	"fmt"

	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/app"
	"github.com/corey/lor/internal/config"
	"github.com/corey/lor/internal/domain/lookup"
	"github.com/corey/lor/internal/ports"
)

// errNoIndex is returned when neither the daemon nor the store has a snapshot.
var errNoIndex = errors.New("no index built yet\n  → run:  lor build")

// daemonClient returns a client when the daemon is up, else nil.
func daemonClient(root string) *socket.Client {
	client := socket.NewClient(socket.SocketPath(root))
	if !client.Ping() {
		return nil
	}
	return client
}

// loadLocalSnapshot reads the persisted snapshot. The store is closed
// before returning.
func loadLocalSnapshot(root string, cfg *config.Config) (*ports.Snapshot, error) {
	store, err := openStore(root, cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, err := store.LoadSnapshot(app.SnapshotName)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil, errNoIndex
	}
	return snap, nil
}

// localService serves the persisted snapshot in-process.
func localService(root string, cfg *config.Config) (*lookup.Service, error) {
	snap, err := loadLocalSnapshot(root, cfg)
	if err != nil {
		return nil, err
	}
	return lookup.NewService(snap, lookup.Options{
		FuzzyThreshold: cfg.Lookup.FuzzyThreshold,
		CacheSize:      -1,
	}), nil
}
