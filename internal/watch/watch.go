// Package watch wraps fsnotify with debouncing for the data directory.
// Rapid bursts of file writes (editors, sync tools) collapse into a
// single reload callback.
package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called after the debounce period once one or more
// relevant files changed.
type ChangeCallback func() error

// DirWatcher watches a directory for snippet file changes and triggers
// reload callbacks.
type DirWatcher struct {
	dirPath        string
	watcher        *fsnotify.Watcher
	callbacks      []ChangeCallback
	mu             sync.RWMutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// NewDirWatcher creates a watcher for the given directory.
func NewDirWatcher(dirPath string) (*DirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(dirPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dirPath, err)
	}

	return &DirWatcher{
		dirPath:        dirPath,
		watcher:        watcher,
		callbacks:      make([]ChangeCallback, 0),
		debouncePeriod: 500 * time.Millisecond,
	}, nil
}

// OnChange registers a callback to be called after relevant changes.
func (dw *DirWatcher) OnChange(callback ChangeCallback) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.callbacks = append(dw.callbacks, callback)
}

// Start begins watching in a background goroutine.
func (dw *DirWatcher) Start() {
	go dw.watchLoop()
}

func (dw *DirWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isSnippetFile(event.Name) {
				continue
			}

			log.Debugf("Data watcher detected change: %s (%s)", event.Name, event.Op)
			dw.scheduleReload()

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Data watcher error: %v", err)
		}
	}
}

// scheduleReload debounces rapid file changes before firing callbacks.
func (dw *DirWatcher) scheduleReload() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.debounceTimer != nil {
		dw.debounceTimer.Stop()
	}

	dw.debounceTimer = time.AfterFunc(dw.debouncePeriod, func() {
		dw.mu.RLock()
		callbacks := make([]ChangeCallback, len(dw.callbacks))
		copy(callbacks, dw.callbacks)
		dw.mu.RUnlock()

		for _, callback := range callbacks {
			if err := callback(); err != nil {
				log.Errorf("Data reload callback failed: %v", err)
			}
		}
	})
}

// Stop stops watching and releases the inotify handle.
func (dw *DirWatcher) Stop() error {
	return dw.watcher.Close()
}

// isSnippetFile filters events down to the extensions the loader reads.
// Editor swap files and lockfiles never trigger a reload.
func isSnippetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(filepath.Base(path))) {
	case ".txt", ".tsv", ".csv":
		return true
	}
	return false
}
