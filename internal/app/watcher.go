package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/corey/lor/internal/logging"
)

// RebuildDelay coalesces a burst of data file changes into one rebuild.
const RebuildDelay = 250 * time.Millisecond

// onDataChanged handles a create/modify/delete event from the watcher by
// (re)arming the rebuild timer.
func (a *App) onDataChanged(absPath string) {
	a.log.Debug("data changed", logging.F("path", absPath))

	a.timerMu.Lock()
	defer a.timerMu.Unlock()
	if a.closing {
		return
	}
	if a.rebuildTimer != nil {
		a.rebuildTimer.Stop()
	}
	a.rebuildTimer = time.AfterFunc(a.rebuildDelay, a.scheduledRebuild)
}

// scheduledRebuild runs on the timer goroutine. A failed rebuild keeps the
// previous snapshot published.
func (a *App) scheduledRebuild() {
	a.timerMu.Lock()
	if a.closing {
		a.timerMu.Unlock()
		return
	}
	a.bg.Add(1)
	a.timerMu.Unlock()
	defer a.bg.Done()

	if _, err := a.Reindex(a.ctx); err != nil && a.ctx.Err() == nil {
		a.log.Warn("rebuild after change failed, keeping previous snapshot", logging.Err(err))
	}
}

// stopTimer cancels any pending rebuild and blocks until a running one exits.
func (a *App) stopTimer() {
	a.timerMu.Lock()
	a.closing = true
	if a.rebuildTimer != nil {
		a.rebuildTimer.Stop()
	}
	a.timerMu.Unlock()
	a.cancel()
	a.bg.Wait()
}

// runInBackground starts fn tracked by the shutdown wait group.
func (a *App) runInBackground(fn func(ctx context.Context)) {
	a.timerMu.Lock()
	defer a.timerMu.Unlock()
	if a.closing {
		return
	}
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		fn(a.ctx)
	}()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isDataExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
