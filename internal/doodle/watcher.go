package doodle

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a single doodle file and reloads it when the drawing app
// saves a new version. Editors replace files on save, so the parent directory
// is watched and events are filtered to the target name.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func([]byte)

	debounceTime time.Duration
	mu           sync.Mutex
	pending      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for the doodle at path.
func NewWatcher(path string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		path:         path,
		watcher:      watcher,
		debounceTime: 500 * time.Millisecond,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// OnChange sets the callback invoked with the reloaded doodle bytes.
func (w *Watcher) OnChange(callback func([]byte)) {
	w.onChange = callback
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.cancel()
	w.wg.Wait()
	return w.watcher.Close()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.mu.Lock()
				w.pending = true
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  Watcher error: %v", err)
		}
	}
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounceTime)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.reloadIfPending()
		}
	}
}

func (w *Watcher) reloadIfPending() {
	w.mu.Lock()
	pending := w.pending
	w.pending = false
	w.mu.Unlock()

	if !pending || w.onChange == nil {
		return
	}

	data, err := Load(w.path)
	if err != nil {
		// Half-written saves fail the PNG check; the next tick retries.
		log.Printf("⚠️  Failed to reload doodle: %v", err)
		return
	}

	log.Printf("🎨 Doodle reloaded (%d bytes)", len(data))
	w.onChange(data)
}
