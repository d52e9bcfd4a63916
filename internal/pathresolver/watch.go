package pathresolver

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps a Snapshot current as the filesystem changes. It owns the
// only mutable state in this package: the current Snapshot pointer, guarded
// by a mutex so Current() can be called concurrently with event processing.
// Each successful event publishes a brand new Snapshot; holders of an
// earlier snapshot value are unaffected, matching the immutable-snapshot
// contract the rest of this package provides.
type Watcher struct {
	mu      sync.RWMutex
	current *Snapshot
	roots   []string
	fsw     *fsnotify.Watcher
	errCh   chan error
}

// NewWatcher builds an initial snapshot from roots and starts watching each
// root directory tree for create/remove/rename events.
func NewWatcher(roots []string) (*Watcher, error) {
	snap, err := BuildFromRoots(roots)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := addRecursive(fsw, root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{current: snap, roots: roots, fsw: fsw, errCh: make(chan error, 1)}
	go w.loop()
	return w, nil
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	return filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

// Current returns the most recently published Snapshot.
func (w *Watcher) Current() *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Errors surfaces fsnotify errors the background loop observed.
func (w *Watcher) Errors() <-chan error {
	return w.errCh
}

// Close stops the background watch loop and releases the fsnotify handle.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errCh <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	root := rootFor(w.roots, event.Name)
	if root == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case event.Op&(fsnotify.Create) != 0:
		if next, err := AddModulePath(w.current, event.Name, root); err == nil {
			w.current = next
		}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.current = RemoveModulePath(w.current, event.Name)
	case event.Op&fsnotify.Write != 0:
		// Content changes don't move the file's module identity; the
		// snapshot tree itself is unaffected, only the parsed AST is stale
		// (the binder/symbol worker own re-parsing on didChange).
	}
}

func rootFor(roots []string, path string) string {
	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(absRoot, path); err == nil && rel != ".." && len(rel) > 0 && rel[0] != '.' {
			return absRoot
		}
	}
	return ""
}
