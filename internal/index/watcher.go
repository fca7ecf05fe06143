package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/psycho-baller/obsidian-journal/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted"; day is the calendar day
// of the affected note.
type EventCallback func(kind string, day string)

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled. Only day-keyed notes
// ("2026-01-08.md") affect the index; other vault files are ignored. It
// calls cb (if non-nil) after each successful index mutation, which lets
// external Obsidian edits flow through to connected clients.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// --- Handle new directories: add to watcher ---
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Index any daily notes already in the new directory.
					indexNewDir(db, store, vaultRoot, absPath, logger, cb)
					continue
				}
			}

			// Only day-keyed notes matter from here on.
			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			key := filepath.ToSlash(rel)
			day, isDay := DayFromKey(key)
			if !isDay {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(key)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("key", key), slog.String("error", readErr.Error()))
					continue
				}
				if idxErr := IndexDay(db, day, key, data); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("day", day), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("day", day), slog.String("op", kind))
				if cb != nil {
					cb(kind, day)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteDay(day); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("day", day), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("day", day))
				if cb != nil {
					cb("deleted", day)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new
				// path will arrive as a separate Create event (if it
				// stays within a watched dir). We delete the old entry
				// immediately and schedule a short reconciliation pass
				// to catch any stragglers.
				if delErr := db.DeleteDay(day); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("day", day), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("day", day))
					if cb != nil {
						cb("deleted", day)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcileAfterRename does a lightweight sync using batch lookups:
// finds index entries without a corresponding file on disk and removes them,
// and finds on-disk daily notes that are not indexed and indexes them.
func reconcileAfterRename(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	infos, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(infos))
	for _, info := range infos {
		if _, ok := DayFromKey(info.Key); ok {
			disk[info.Key] = info.Checksum
		}
	}

	for key := range checksums {
		if _, ok := disk[key]; ok {
			continue
		}
		day, ok := DayFromKey(key)
		if !ok {
			continue
		}
		if delErr := db.DeleteDay(day); delErr == nil {
			logger.Debug("reconcile: removed stale", slog.String("day", day))
			if cb != nil {
				cb("deleted", day)
			}
		}
	}

	for key, cs := range disk {
		if checksums[key] == cs {
			continue
		}
		day, _ := DayFromKey(key)
		data, readErr := store.Read(key)
		if readErr != nil {
			continue
		}
		if idxErr := IndexDay(db, day, key, data); idxErr == nil {
			logger.Debug("reconcile: indexed new", slog.String("day", day))
			if cb != nil {
				cb("created", day)
			}
		}
	}
}

// indexNewDir indexes any daily notes found in a newly created directory.
func indexNewDir(db *DB, store storage.Provider, vaultRoot, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		key := filepath.ToSlash(rel)
		day, isDay := DayFromKey(key)
		if !isDay {
			return nil
		}
		data, readErr := store.Read(key)
		if readErr != nil {
			return nil
		}
		if idxErr := IndexDay(db, day, key, data); idxErr == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("day", day))
			if cb != nil {
				cb("created", day)
			}
		}
		return nil
	})
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
