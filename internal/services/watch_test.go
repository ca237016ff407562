package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/quire/internal/build"
	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/logging"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   int
	errs    []error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeRunner) Run(context.Context) (*build.Result, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	var err error
	if n <= len(f.errs) {
		err = f.errs[n-1]
	}
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return &build.Result{PassID: "pass", Duration: time.Millisecond}, err
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "rebuilding", StateRebuilding.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestWatchRunsInitialPassAndOnePerNotification(t *testing.T) {
	runner := &fakeRunner{}
	notify := make(chan struct{}, 1)
	progress := &syncBuffer{}
	svc := NewWatchService(runner, notify, WatchOptions{Progress: progress})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	notify <- struct{}{}
	require.Eventually(t, func() bool { return runner.count() == 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	assert.Equal(t, StateIdle, svc.State())
	assert.Contains(t, progress.String(), "T + 0s - Listening...")
	assert.Contains(t, progress.String(), "s - Compiled!")
	assert.EqualValues(t, 2, svc.Metrics().SuccessfulPasses)
}

func TestWatchSurvivesFailedPasses(t *testing.T) {
	boom := errors.New("boom")
	runner := &fakeRunner{errs: []error{boom, boom}}
	notify := make(chan struct{}, 1)
	svc := NewWatchService(runner, notify, WatchOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	notify <- struct{}{}
	require.Eventually(t, func() bool { return runner.count() == 2 }, 2*time.Second, 5*time.Millisecond)
	notify <- struct{}{}
	require.Eventually(t, func() bool { return runner.count() == 3 }, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool { return svc.Metrics().TotalPasses == 3 }, 2*time.Second, 5*time.Millisecond)
	m := svc.Metrics()
	assert.EqualValues(t, 2, m.FailedPasses)
	assert.EqualValues(t, 1, m.SuccessfulPasses)
}

func TestWatchFailOnInitialError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewWatchService(&fakeRunner{errs: []error{boom}}, make(chan struct{}), WatchOptions{FailOnInitialError: true})

	err := svc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestWatchContinuesAfterInitialErrorByDefault(t *testing.T) {
	boom := errors.New("boom")
	runner := &fakeRunner{errs: []error{boom}}
	svc := NewWatchService(runner, make(chan struct{}), WatchOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, svc.Run(ctx))
	assert.Equal(t, 1, runner.count())
}

func TestTriggerIsNotReentrant(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	svc := NewWatchService(runner, nil, WatchOptions{})

	var ran atomic.Bool
	go func() {
		ok, _ := svc.Trigger(context.Background())
		ran.Store(ok)
	}()
	<-runner.entered
	assert.Equal(t, StateRebuilding, svc.State())

	ok, err := svc.Trigger(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, svc.Ignored())

	close(runner.block)
	require.Eventually(t, func() bool { return svc.State() == StateIdle }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, ran.Load, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, runner.count())
}

func TestWatchCoalescesNotificationsDuringPass(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), entered: make(chan struct{}, 4)}
	notify := make(chan struct{}, 1)
	svc := NewWatchService(runner, notify, WatchOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx) }()

	<-runner.entered // initial pass is running
	for range 5 {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
	close(runner.block)

	require.Eventually(t, func() bool { return runner.count() == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, runner.count(), "a burst during a pass yields exactly one follow-up pass")
}

func TestWatchStopsOnUnrecoverableInitialError(t *testing.T) {
	cfgErr := siteerrors.NewConfigError("bad", nil)
	svc := NewWatchService(&fakeRunner{errs: []error{cfgErr}}, make(chan struct{}), WatchOptions{})

	err := svc.Run(context.Background())
	assert.ErrorIs(t, err, siteerrors.ErrConfig)
}

func TestWatchLogsFailureContext(t *testing.T) {
	failure := siteerrors.NewEmptyPostList().WithPath("input/blog")
	runner := &fakeRunner{errs: []error{failure}}
	logs := &syncBuffer{}
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelInfo, Format: "json", Output: logs})
	svc := NewWatchService(runner, make(chan struct{}), WatchOptions{Logger: logger})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, svc.Run(ctx))

	out := logs.String()
	assert.Contains(t, out, `"msg":"rebuild failed"`)
	assert.Contains(t, out, `"code":"NO_POSTS"`)
	assert.Contains(t, out, `"path":"input/blog"`)
	assert.Contains(t, out, `"recoverable":true`)
	assert.Contains(t, out, `"msg":"watch stopped"`)
	assert.Contains(t, out, `"success_rate":"0.0%"`)
}

func TestFailureFieldsForeignError(t *testing.T) {
	fields := failureFields(errors.New("boom"))
	assert.Equal(t, []interface{}{"message", "boom", "type", "unknown", "recoverable", true}, fields)
}
