// Package watch reports when a codec run's output file shows up on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jp2mi/internal/log"

	"github.com/fsnotify/fsnotify"
)

// OutputEvent is delivered once the watched output file exists
type OutputEvent struct {
	Path      string
	Info      os.FileInfo
	Timestamp time.Time
	Op        fsnotify.Op
}

// OutputWatcher monitors the directory of a single output file using fsnotify
type OutputWatcher struct {
	// Cleaned path of the file to wait for
	target string

	// Channel delivering the first matching event
	readyChan chan OutputEvent

	// Channel to signal stop
	stopChan chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	mutex   sync.Mutex
	running bool
	fired   bool
}

// New creates a watcher for the output file at path. The file's directory
// must already exist.
func New(path string) (*OutputWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("no output path to watch")
	}
	target := filepath.Clean(path)
	dir := filepath.Dir(target)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("error accessing output directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	return &OutputWatcher{
		target:    target,
		readyChan: make(chan OutputEvent, 1),
		stopChan:  make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// Target returns the path being waited for
func (w *OutputWatcher) Target() string {
	return w.target
}

// Ready returns the channel that receives one event when the output is
// created or written. It is closed when the watcher stops.
func (w *OutputWatcher) Ready() <-chan OutputEvent {
	return w.readyChan
}

// Start begins processing fsnotify events
func (w *OutputWatcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mutex.Unlock()

	go w.loop()

	log.LogWithFields(log.F("path", w.target)).Debug("Waiting for output")
	return nil
}

func (w *OutputWatcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				if !os.IsNotExist(err) {
					log.LogWithFields(log.F("path", event.Name), log.F("error", err)).Error("Error stating output")
				}
				continue
			}
			if info.IsDir() {
				continue
			}
			w.fire(OutputEvent{
				Path:      w.target,
				Info:      info,
				Timestamp: time.Now(),
				Op:        event.Op,
			})

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func (w *OutputWatcher) fire(ev OutputEvent) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.fired || !w.running {
		return
	}
	w.fired = true
	w.readyChan <- ev
	log.LogWithFields(log.F("path", ev.Path), log.F("op", ev.Op.String())).Info("Output ready")
}

// Stop halts the watcher and closes the Ready channel
func (w *OutputWatcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.running {
		return
	}
	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	w.running = false
	close(w.readyChan)
}

// IsRunning returns whether the watcher is currently active
func (w *OutputWatcher) IsRunning() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.running
}

// Notify watches path in the background and calls fn once the file appears.
// The returned stop function cancels the watch.
func Notify(path string, fn func(OutputEvent)) (stop func(), err error) {
	w, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	go func() {
		if ev, ok := <-w.Ready(); ok {
			fn(ev)
		}
		w.Stop()
	}()
	return w.Stop, nil
}

// WaitFor blocks until w reports its output, or ctx is done
func WaitFor(ctx context.Context, w *OutputWatcher) (OutputEvent, error) {
	select {
	case ev, ok := <-w.Ready():
		if !ok {
			return OutputEvent{}, fmt.Errorf("watcher stopped before %s appeared", w.Target())
		}
		return ev, nil
	case <-ctx.Done():
		return OutputEvent{}, ctx.Err()
	}
}
