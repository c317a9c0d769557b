package ports

// Watcher monitors the entity data directory and triggers rebuilds.
// The adapter (fsnotify) filters editor noise (.swp, .DS_Store, etc.)
// before invoking onChange. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring dataDir recursively. onChange is called with
	// the absolute path of each changed file, from any goroutine.
	Watch(dataDir string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
