// Package watch monitors a directory and hands newly arrived images to a
// conversion callback.
package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"webpcbz/internal/convert"
)

// debounceDelay absorbs the rapid create/write event bursts emitted while a
// file is still being copied into the watched directory.
const debounceDelay = 500 * time.Millisecond

// Watcher monitors one directory for new image files.
type Watcher struct {
	dir     string
	handle  func(path string)
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	debounce map[string]*time.Timer
	done     chan struct{}
}

// New creates a watcher that calls handle for each image that settles in dir.
func New(dir string, handle func(path string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		dir:      dir,
		handle:   handle,
		watcher:  fsWatcher,
		debounce: make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Start begins monitoring. It returns immediately; events are processed on a
// background goroutine until Stop is called.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	go w.processEvents()
	return nil
}

// Stop ends monitoring and releases the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !wantFile(event.Name) {
				continue
			}
			w.schedule(event.Name)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// schedule (re)arms the debounce timer for a path, so the handler fires once
// after writes quiet down.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Reset(debounceDelay)
		return
	}
	w.debounce[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()

		select {
		case <-w.done:
		default:
			w.handle(path)
		}
	})
}

// wantFile filters to convertible images, excluding .webp so the watcher
// never reprocesses its own output.
func wantFile(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		return false
	}
	return convert.IsImageFile(path)
}
