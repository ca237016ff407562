package services

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/conneroisu/quire/internal/build"
	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/logging"
)

// State is the watch loop's state.
type State int32

const (
	// StateIdle waits for the next change notification.
	StateIdle State = iota
	// StateRebuilding is running a pass.
	StateRebuilding
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// WatchOptions configures a WatchService.
type WatchOptions struct {
	// FailOnInitialError makes Run return when the first pass fails instead
	// of continuing to watch.
	FailOnInitialError bool
	// Progress receives one "T + Ns" line per successful pass. Nil
	// discards them.
	Progress io.Writer
	Logger   logging.Logger
	Metrics  *build.Metrics
}

// WatchService reruns a pass each time a notification arrives. Passes never
// overlap: a trigger that arrives while a pass is running is ignored.
type WatchService struct {
	runner        Runner
	notifications <-chan struct{}
	opts          WatchOptions
	logger        logging.Logger
	metrics       *build.Metrics

	state   atomic.Int32
	ignored atomic.Int64
	started time.Time
}

// NewWatchService returns an idle service consuming notifications.
func NewWatchService(runner Runner, notifications <-chan struct{}, opts WatchOptions) *WatchService {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.Metrics == nil {
		opts.Metrics = build.NewMetrics()
	}
	return &WatchService{
		runner:        runner,
		notifications: notifications,
		opts:          opts,
		logger:        opts.Logger.WithComponent("watch"),
		metrics:       opts.Metrics,
	}
}

// State reports the current state.
func (s *WatchService) State() State {
	return State(s.state.Load())
}

// Ignored reports how many triggers arrived while a pass was running.
func (s *WatchService) Ignored() int64 {
	return s.ignored.Load()
}

// Metrics returns the pass totals.
func (s *WatchService) Metrics() build.MetricsSnapshot {
	return s.metrics.Snapshot()
}

// Run performs the initial pass, then one pass per notification until ctx
// is cancelled. It returns nil on cancellation. A failed initial pass ends
// Run when FailOnInitialError is set or when the failure is not recoverable.
func (s *WatchService) Run(ctx context.Context) error {
	s.started = time.Now()

	if _, err := s.Trigger(ctx); err != nil && (s.opts.FailOnInitialError || !siteerrors.IsRecoverable(err)) {
		return err
	}
	fmt.Fprintln(s.opts.Progress, "T + 0s - Listening...")

	for {
		select {
		case <-ctx.Done():
			snapshot := s.metrics.Snapshot()
			s.logger.Info(ctx, "watch stopped",
				"passes", snapshot.TotalPasses,
				"success_rate", fmt.Sprintf("%.1f%%", snapshot.SuccessRate()))
			return nil
		case <-s.notifications:
			_, _ = s.Trigger(ctx)
		}
	}
}

// Trigger runs one pass if the service is idle. It reports false when a pass
// was already running, in which case nothing happens. Pass failures are
// logged and returned but leave the service usable.
func (s *WatchService) Trigger(ctx context.Context) (bool, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRebuilding)) {
		s.ignored.Add(1)
		s.logger.Debug(ctx, "trigger ignored, pass in progress")
		return false, nil
	}
	defer s.state.Store(int32(StateIdle))

	result, err := s.runner.Run(ctx)
	s.metrics.Record(result, err)

	if err != nil {
		s.logger.Error(ctx, err, "rebuild failed", failureFields(err)...)
		return true, err
	}

	elapsed := time.Since(s.started)
	if s.started.IsZero() {
		elapsed = 0
	}
	fmt.Fprintf(s.opts.Progress, "T + %ds - Compiled!\n", int(elapsed.Seconds()))
	return true, nil
}

// failureFields flattens the error context into sorted key/value pairs.
func failureFields(err error) []interface{} {
	details := siteerrors.GetErrorContext(err)
	fields := make([]interface{}, 0, 2*len(details)+2)
	for _, key := range slices.Sorted(maps.Keys(details)) {
		fields = append(fields, key, details[key])
	}
	return append(fields, "recoverable", siteerrors.IsRecoverable(err))
}
