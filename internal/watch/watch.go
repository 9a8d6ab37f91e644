// Package watch reruns a check whenever the document tree changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/docwarden/internal/checksum"
	"github.com/starford/docwarden/internal/storage"
)

// DefaultDebounce is the quiet period after the last event before the tree
// is checked again.
const DefaultDebounce = 300 * time.Millisecond

// Watch watches dir (root-relative) recursively until ctx is cancelled and
// calls onChange whenever the checksum of its documents changes. Bursts of
// events are coalesced with the debounce period.
//
// New directories created at runtime are added to the watch list. Backups
// and temporary files never trigger a check.
func Watch(ctx context.Context, store storage.Provider, dir string, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	base := filepath.Join(store.Root(), filepath.FromSlash(dir))

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, base); err != nil {
		return err
	}

	last, err := treeSum(store, dir)
	if err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("dir", base))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			sum, err := treeSum(store, dir)
			if err != nil {
				logger.Warn("watcher: list failed", slog.String("error", err.Error()))
				continue
			}
			if sum == last {
				logger.Debug("watcher: tree unchanged")
				continue
			}
			last = sum
			logger.Debug("watcher: tree changed", slog.String("checksum", sum))
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
					schedule()
					continue
				}
			}
			// Removed or renamed paths may have been directories, so only
			// content events are filtered by extension.
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 && !strings.HasSuffix(ev.Name, storage.Extension) {
				continue
			}
			logger.Debug("watcher: event", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func ignored(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, storage.BackupSuffix) || strings.HasPrefix(name, storage.TempPrefix)
}

// treeSum folds the checksums of every document under dir into one digest.
func treeSum(store storage.Provider, dir string) (string, error) {
	metas, err := store.List(dir)
	if err != nil {
		return "", err
	}
	sums := make(map[string]string, len(metas))
	for _, m := range metas {
		sums[m.Path] = m.Checksum
	}
	return checksum.Tree(sums), nil
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
