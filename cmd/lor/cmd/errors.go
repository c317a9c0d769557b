package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/corey/lor/internal/adapters/bbolt"
	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/app"
	"github.com/corey/lor/internal/config"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock checks the daemon state and returns actionable guidance
// when a bbolt open fails due to lock contention.
func diagnoseDBLock(root string) string {
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "database is locked by the running daemon\n" +
			"  → stop it first:  lor daemon stop\n" +
			"  → then retry your command"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("database is locked — daemon socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'lor daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'lor'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}

// openStore opens the project's snapshot store, turning lock timeouts
// into guidance.
func openStore(root string, cfg *config.Config) (*bbolt.Store, error) {
	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	dbPath := paths.DB
	if cfg.DBPath != "" {
		dbPath = config.Resolve(root, cfg.DBPath)
	}
	store, err := bbolt.NewStore(dbPath)
	if isDBLockError(err) {
		return nil, errors.New(diagnoseDBLock(root))
	}
	return store, err
}
