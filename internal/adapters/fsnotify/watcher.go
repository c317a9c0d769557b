// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It recursively watches the entity data directory and reports changes to
// entity files and the collectables table. Editor swap files, hidden
// directories and anything that is not JSON or YAML are ignored.
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/lor/internal/logging"
	"github.com/corey/lor/internal/ports"
)

// DebounceInterval drops repeat events for one path inside this window.
// Editors often write a file several times per save.
const DebounceInterval = 50 * time.Millisecond

// Extensions that carry data.
var dataExts = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	log     logging.Logger
	done    chan struct{}
	wg      sync.WaitGroup
	stopped bool
	mu      sync.Mutex
}

var _ ports.Watcher = (*Watcher)(nil)

// NewWatcher creates a new file system watcher. log may be nil.
func NewWatcher(log logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Watcher{
		fw:   fw,
		log:  log,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring dataDir recursively.
// onChange is called with the absolute path of each changed data file.
func (w *Watcher) Watch(dataDir string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(dataDir)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			if path != absPath && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop(absPath, onChange)
	return nil
}

func (w *Watcher) loop(root string, onChange func(string)) {
	defer w.wg.Done()
	last := make(map[string]time.Time)

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			path := event.Name

			// New locale directories join the watch list.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() && !isHidden(info.Name()) {
					if err := w.fw.Add(path); err != nil {
						w.log.Warn("watch new directory", logging.F("path", path), logging.Err(err))
					}
				}
			}

			if !isDataFile(root, path) {
				continue
			}
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
				continue
			}

			now := time.Now()
			if t, seen := last[path]; seen && now.Sub(t) < DebounceInterval {
				continue
			}
			last[path] = now

			select {
			case <-w.done:
				return
			default:
			}
			onChange(path)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", logging.Err(err))

		case <-w.done:
			return
		}
	}
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.done)
	err := w.fw.Close()
	w.mu.Unlock()

	w.wg.Wait()
	return err
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isDataFile reports whether path under root should trigger onChange.
func isDataFile(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if isHidden(part) {
			return false
		}
	}
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") {
		return false
	}
	return dataExts[strings.ToLower(filepath.Ext(base))]
}
