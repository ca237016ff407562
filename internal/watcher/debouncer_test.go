package watcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]ChangeEvent
}

func (r *batchRecorder) flush(events []ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
}

func (r *batchRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	rec := &batchRecorder{}
	d := NewDebouncer(50*time.Millisecond, rec.flush)

	d.Add(ChangeEvent{Type: EventTypeCreated, Path: "b.md"})
	d.Add(ChangeEvent{Type: EventTypeModified, Path: "a.md"})
	d.Add(ChangeEvent{Type: EventTypeModified, Path: "b.md"})

	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count())

	rec.mu.Lock()
	batch := rec.batches[0]
	rec.mu.Unlock()
	assert.Equal(t, []ChangeEvent{
		{Type: EventTypeModified, Path: "a.md"},
		{Type: EventTypeModified, Path: "b.md"},
	}, batch)
}

func TestDebouncerSeparateBursts(t *testing.T) {
	rec := &batchRecorder{}
	d := NewDebouncer(20*time.Millisecond, rec.flush)

	d.Add(ChangeEvent{Path: "a"})
	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	d.Add(ChangeEvent{Path: "a"})
	require.Eventually(t, func() bool { return rec.count() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestDebouncerStop(t *testing.T) {
	rec := &batchRecorder{}
	d := NewDebouncer(20*time.Millisecond, rec.flush)

	d.Add(ChangeEvent{Path: "a"})
	d.Stop()
	d.Add(ChangeEvent{Path: "b"})

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "created", EventTypeCreated.String())
	assert.Equal(t, "modified", EventTypeModified.String())
	assert.Equal(t, "deleted", EventTypeDeleted.String())
	assert.Equal(t, "renamed", EventTypeRenamed.String())
	assert.Equal(t, "unknown", EventType(42).String())
}
