package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photobook-stories/internal/filehandler"
)

// DefaultDebounce batches bursts of file events (e.g. deleting a selection
// of photos at once) into one ChangeSet.
const DefaultDebounce = 500 * time.Millisecond

// Watcher turns file deletions under a directory-backed library into
// ChangeSets keyed by the same asset IDs ScanDirectory produces.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// NewWatcher starts watching root and every non-hidden directory below it.
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve library root: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{root: absRoot, debounce: debounce, fsw: fsw}
	if err := w.addDirs(absRoot); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("add watch directories: %w", err)
	}
	return w, nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers debounced ChangeSets to onChange until ctx is cancelled or the
// watcher is closed. onChange is called from Run's goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(ChangeSet)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if w.isDir(event.Name) {
					if err := w.addDirs(event.Name); err != nil {
						log.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
					}
				}
				continue
			}

			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			id, ok := w.assetID(event.Name)
			if !ok {
				continue
			}
			pending[id] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Library watch error")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			ids := make([]string, 0, len(pending))
			for id := range pending {
				ids = append(ids, id)
			}
			pending = make(map[string]struct{})

			log.Debug().Int("deleted", len(ids)).Msg("Library change detected")
			onChange(NewChangeSet(ids...))
		}
	}
}

// assetID maps an absolute file path to its asset ID, if it is a photo.
func (w *Watcher) assetID(path string) (string, bool) {
	if !filehandler.IsImage(filepath.Ext(path)) {
		return "", false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// addDirs recursively adds directories to the watcher, skipping hidden ones.
func (w *Watcher) addDirs(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}
