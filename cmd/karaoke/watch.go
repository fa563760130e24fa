package main

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloader signals on C after the watched file changes and then stays quiet
// for the debounce interval.
type reloader struct {
	C <-chan struct{}

	c        chan struct{}
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *log.Logger

	mu      sync.Mutex
	pending *time.Timer
	done    chan struct{}
}

// watchFile starts watching path. The directory is watched rather than the
// file because many editors save by replacing the file.
func watchFile(path string, debounce time.Duration, logger *log.Logger) (*reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("error watching %s: %w", filepath.Dir(path), err)
	}

	c := make(chan struct{}, 1)
	r := &reloader{
		C:        c,
		c:        c,
		path:     filepath.Clean(path),
		debounce: debounce,
		watcher:  watcher,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go r.run()
	return r, nil
}

func (r *reloader) run() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				r.trigger()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Printf("watcher error: %v", err)
		case <-r.done:
			return
		}
	}
}

// trigger restarts the debounce timer.
func (r *reloader) trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		r.pending.Stop()
	}
	r.pending = time.AfterFunc(r.debounce, func() {
		select {
		case r.c <- struct{}{}:
		default:
			// A reload is already queued.
		}
	})
}

func (r *reloader) Close() error {
	r.mu.Lock()
	if r.pending != nil {
		r.pending.Stop()
	}
	r.mu.Unlock()
	close(r.done)
	return r.watcher.Close()
}
