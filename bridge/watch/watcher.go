// Package watch eagerly evicts cache entries when a watched working
// directory changes on disk. The fingerprint in every cache key already
// guarantees stale results are never served; watching just frees the slots
// sooner.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/codexbridge/codex-bridge/bridge/delegate/ports"
)

// Invalidator watches working directories and drops their cache entries on
// write events.
type Invalidator struct {
	cache   ports.ResultCache
	logger  zerolog.Logger
	watcher *fsnotify.Watcher

	mu   sync.Mutex
	dirs map[string]struct{}
}

// NewInvalidator creates an invalidator feeding evictions into cache.
func NewInvalidator(cache ports.ResultCache, logger zerolog.Logger) (*Invalidator, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Invalidator{
		cache:   cache,
		logger:  logger,
		watcher: watcher,
		dirs:    make(map[string]struct{}),
	}, nil
}

// Watch registers dir for invalidation. Registering the same directory
// twice is a no-op.
func (inv *Invalidator) Watch(dir string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, ok := inv.dirs[dir]; ok {
		return nil
	}
	if err := inv.watcher.Add(dir); err != nil {
		return err
	}
	inv.dirs[dir] = struct{}{}
	return nil
}

// Run processes events until ctx is done or the watcher closes. Intended to
// be launched in its own goroutine.
func (inv *Invalidator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-inv.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			dir := inv.owningDir(event.Name)
			if dir == "" {
				continue
			}
			if dropped := inv.cache.InvalidateDir(dir); dropped > 0 {
				inv.logger.Debug().
					Str("dir", dir).
					Int("dropped", dropped).
					Msg("invalidated cache entries after filesystem change")
			}
		case err, ok := <-inv.watcher.Errors:
			if !ok {
				return
			}
			inv.logger.Warn().Err(err).Msg("filesystem watcher error")
		}
	}
}

// Close stops the underlying watcher.
func (inv *Invalidator) Close() error {
	return inv.watcher.Close()
}

// owningDir maps an event path back to the registered directory containing
// it.
func (inv *Invalidator) owningDir(path string) string {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for dir := range inv.dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return dir
		}
	}
	return ""
}
