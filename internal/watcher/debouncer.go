package watcher

import (
	"sort"
	"sync"
	"time"
)

// Debouncer groups events that arrive within delay of each other and hands
// the batch to flush once the source has been quiet for delay.
type Debouncer struct {
	delay time.Duration
	flush func([]ChangeEvent)

	mutex   sync.Mutex
	timer   *time.Timer
	pending []ChangeEvent
	stopped bool
}

// NewDebouncer returns a Debouncer calling flush on its own goroutine.
func NewDebouncer(delay time.Duration, flush func([]ChangeEvent)) *Debouncer {
	return &Debouncer{delay: delay, flush: flush}
}

// Add records an event and restarts the quiet period.
func (d *Debouncer) Add(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Stop drops pending events and prevents further flushes.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
}

func (d *Debouncer) fire() {
	d.mutex.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mutex.Unlock()
		return
	}

	// Keep the latest event per path.
	latest := make(map[string]ChangeEvent, len(d.pending))
	for _, event := range d.pending {
		latest[event.Path] = event
	}
	d.pending = d.pending[:0]
	d.mutex.Unlock()

	events := make([]ChangeEvent, 0, len(latest))
	for _, event := range latest {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	d.flush(events)
}
