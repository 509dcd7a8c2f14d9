// Package notify adapts fsnotify into the navigator's file-system event
// stream: create, delete, rename, modify, and metadata-changed.
package notify

import (
	"fmt"
	"os"
	"sync"
	"time"

	"notenav/internal/log"

	"github.com/fsnotify/fsnotify"
)

// EventKind classifies one file-system event.
type EventKind int

const (
	EventCreate EventKind = iota
	EventDelete
	EventRename
	EventModify
	EventMetadata
)

// String returns the event kind's name.
func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	case EventModify:
		return "modify"
	case EventMetadata:
		return "metadata"
	}
	return "unknown"
}

// Structural reports whether the event changes set membership and must
// always invalidate the base file set.
func (k EventKind) Structural() bool {
	return k == EventCreate || k == EventDelete || k == EventRename
}

// Event is one file-system change.
type Event struct {
	Kind    EventKind
	Path    string
	OldPath string // set for renames when known
	Time    time.Time
}

// Watcher monitors directories for file changes using fsnotify.
type Watcher struct {
	directories []string
	events      chan Event
	stopChan    chan struct{}
	fsWatcher   *fsnotify.Watcher
	mutex       sync.RWMutex
	running     bool
}

// New creates a new directory watcher.
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		events:    make(chan Event, 64),
		stopChan:  make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// AddDirectory adds a directory to watch.
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w.mutex.Lock()
	found := false
	for _, existing := range w.directories {
		if existing == dir {
			found = true
			break
		}
	}
	if !found {
		w.directories = append(w.directories, dir)
	}
	w.mutex.Unlock()
	log.With(log.F("directory", dir)).Info("Watching directory")
	return nil
}

// Events returns the channel delivering file-system events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins the watching loop.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.mutex.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				w.handle(event)
			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				log.With(log.F("error", err)).Error("fsnotify watcher error")
			case <-w.stopChan:
				return
			}
		}
	}()

	log.Info("Watcher started")
	return nil
}

func (w *Watcher) handle(event fsnotify.Event) {
	var kind EventKind
	switch {
	case event.Op.Has(fsnotify.Create):
		kind = EventCreate
	case event.Op.Has(fsnotify.Remove):
		kind = EventDelete
	case event.Op.Has(fsnotify.Rename):
		// fsnotify reports the old path; the paired create for the new
		// path arrives as its own event.
		kind = EventRename
	case event.Op.Has(fsnotify.Write):
		kind = EventModify
	case event.Op.Has(fsnotify.Chmod):
		kind = EventMetadata
	default:
		return
	}

	// Creates and modifies for directories are not list events. The path
	// is gone for deletes and renames, so only stat when it can exist.
	if kind == EventCreate || kind == EventModify {
		info, err := os.Stat(event.Name)
		if err != nil {
			if !os.IsNotExist(err) {
				log.With(log.F("file", event.Name), log.F("error", err)).Error("Error stating file")
			}
			return
		}
		if info.IsDir() {
			return
		}
	}

	out := Event{Kind: kind, Path: event.Name, Time: time.Now()}
	if kind == EventRename {
		out.OldPath = event.Name
	}

	select {
	case w.events <- out:
	default:
		log.With(log.F("file", event.Name)).Warn("Event channel is full, dropped event")
	}
}

// Stop halts the watching loop and closes the event channel.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.running {
		return
	}
	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.With(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	w.running = false
	close(w.events)
	log.Info("Watcher stopped")
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Directories returns the list of directories being watched.
func (w *Watcher) Directories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirs := make([]string, len(w.directories))
	copy(dirs, w.directories)
	return dirs
}
