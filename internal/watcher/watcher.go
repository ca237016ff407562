// Package watcher reports that something changed under a directory tree.
//
// Raw fsnotify events are filtered, debounced, and collapsed into a single
// pending notification: a consumer that is busy when several batches arrive
// sees one notification, not one per batch.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/logging"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 3 * time.Second

// ChangeEvent is one filtered filesystem event.
type ChangeEvent struct {
	Type EventType
	Path string
}

// EventType classifies a change.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Filter reports whether an event on path should count as a change.
type Filter func(path string) bool

// Watcher turns filesystem activity under one or more roots into
// notifications on a channel with room for exactly one pending value.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	notify    chan struct{}
	logger    logging.Logger

	mutex   sync.RWMutex
	filters []Filter
}

// New creates a Watcher. delay <= 0 selects DefaultDebounce.
func New(delay time.Duration, logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, siteerrors.WrapIO(err, siteerrors.CodeWatchFailed, "")
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Nop()
	}

	w := &Watcher{
		fsw:    fsw,
		notify: make(chan struct{}, 1),
		logger: logger.WithComponent("watcher"),
	}
	w.debouncer = NewDebouncer(delay, w.signal)
	return w, nil
}

// AddFilter adds a filter. All filters must accept a path for its events to
// count.
func (w *Watcher) AddFilter(filter Filter) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.filters = append(w.filters, filter)
}

// AddRecursive watches root and every directory below it. Directories
// created later are picked up as their creation events arrive.
func (w *Watcher) AddRecursive(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return siteerrors.WrapIO(err, siteerrors.CodeWatchFailed, root)
	}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != abs && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		return siteerrors.WrapIO(err, siteerrors.CodeWatchFailed, root)
	}
	return nil
}

// Notifications delivers one value per debounced batch, coalescing batches
// the consumer has not yet received.
func (w *Watcher) Notifications() <-chan struct{} {
	return w.notify
}

// Start processes events until ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	go w.watchLoop(ctx)
}

// Close stops the debouncer and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsw.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "file watcher error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	w.mutex.RLock()
	filters := w.filters
	w.mutex.RUnlock()
	for _, filter := range filters {
		if !filter(event.Name) {
			return
		}
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventTypeCreated
		if err := w.addIfDir(event.Name); err != nil {
			w.logger.Warn(ctx, err, "could not watch new directory", "path", event.Name)
		}
	case event.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Has(fsnotify.Remove):
		eventType = EventTypeDeleted
	case event.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeModified
	}

	w.logger.Debug(ctx, "change observed", "path", event.Name, "type", eventType.String())
	w.debouncer.Add(ChangeEvent{Type: eventType, Path: event.Name})
}

func (w *Watcher) addIfDir(path string) error {
	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() {
		return nil
	}
	return w.AddRecursive(path)
}

func (w *Watcher) signal(events []ChangeEvent) {
	w.logger.Debug(context.Background(), "changes settled", "count", len(events))
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
