// Package vaultfs watches an Obsidian vault directory for markdown
// changes so edits can be re-ingested while a chat session is running.
package vaultfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vaultchat-labs/vaultchat-cli/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last write
// before emitting a change. Editors save in bursts; one event per burst
// is enough.
const DefaultDebounce = 500 * time.Millisecond

// ChangeKind classifies a vault change.
type ChangeKind int

// Change kinds.
const (
	// ChangeModified means the file was created or written.
	ChangeModified ChangeKind = iota

	// ChangeRemoved means the file was deleted or renamed away.
	ChangeRemoved
)

// Change is a debounced vault file event.
type Change struct {
	// Path is the file path relative to the vault root, with forward
	// slashes.
	Path string

	// Kind classifies the change.
	Kind ChangeKind
}

// Watcher emits debounced change events for markdown files under a
// vault directory, including subdirectories created after the watch
// starts.
type Watcher struct {
	root     string
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*pendingChange
}

type pendingChange struct {
	timer *time.Timer
	kind  ChangeKind
}

// New creates a watcher for the vault rooted at dir. debounce <= 0
// selects DefaultDebounce.
func New(dir string, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening vault %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %q is not a directory", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     dir,
		debounce: debounce,
		pending:  make(map[string]*pendingChange),
	}, nil
}

// Watch streams changes until ctx is cancelled. The returned channel is
// closed on cancellation or on a watcher failure.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := w.addRecursive(fw, w.root); err != nil {
		fw.Close()
		return nil, err
	}

	changes := make(chan Change, 16)
	go w.run(ctx, fw, changes)

	logger.Info("Watching vault %s", w.root)
	return changes, nil
}

// addRecursive registers dir and all non-hidden subdirectories.
func (w *Watcher) addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, fw, event, changes)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Vault watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event, changes chan<- Change) {
	// New directories need their own watch to pick up files inside.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := w.addRecursive(fw, event.Name); err != nil {
					logger.Warn("Watching new directory %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	var kind ChangeKind
	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		kind = ChangeRemoved
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		kind = ChangeModified
	default:
		return // Chmod and friends
	}

	w.schedule(ctx, rel, kind, changes)
}

// schedule arms (or re-arms) the debounce timer for path. The latest
// kind wins: a write followed by a remove reports a removal.
func (w *Watcher) schedule(ctx context.Context, path string, kind ChangeKind, changes chan<- Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok {
		p.kind = kind
		p.timer.Reset(w.debounce)
		return
	}

	p := &pendingChange{kind: kind}
	p.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		kind := p.kind
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case changes <- Change{Path: path, Kind: kind}:
		case <-ctx.Done():
		}
	})
	w.pending[path] = p
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
}
