package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"agentctl/internal/domain"
	"agentctl/internal/infra/poller"
	"agentctl/internal/infra/querycache"
	"agentctl/internal/infra/telemetry"
)

// ExecutionWatcher follows the execution list, arming the poller while
// any execution is in progress and disarming it when all settle.
type ExecutionWatcher struct {
	app      *App
	logger   *zap.Logger
	opts     domain.ListOptions
	onUpdate func([]domain.Execution)
	ticks    chan struct{}

	mu         sync.Mutex
	ctrl       *poller.Controller
	inProgress int
}

// WatchOptions configures an ExecutionWatcher. OnUpdate runs on the
// watcher goroutine after every successful refresh.
type WatchOptions struct {
	List     domain.ListOptions
	OnUpdate func([]domain.Execution)
}

func (a *App) NewExecutionWatcher(opts WatchOptions) *ExecutionWatcher {
	return &ExecutionWatcher{
		app:      a,
		logger:   a.logger.Named("watch"),
		opts:     opts.List,
		onUpdate: opts.OnUpdate,
		ticks:    make(chan struct{}, 1),
	}
}

// Run blocks until ctx is cancelled or the stored credential expires.
// The poller is always stopped before Run returns.
func (w *ExecutionWatcher) Run(ctx context.Context) error {
	key := querycache.ListKey(domain.ResourceExecutions, w.opts)
	w.app.cache.Subscribe(key)
	defer w.app.cache.Unsubscribe(key)

	ctrl := poller.New(poller.Options{
		Interval: w.app.config.PollInterval(),
		OnTick:   w.requestTick,
		Logger:   w.logger,
		Metrics:  w.app.metrics,
	})
	defer ctrl.Stop()

	w.mu.Lock()
	w.ctrl = ctrl
	w.mu.Unlock()

	if err := w.refresh(ctx, ctrl); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch stopped", telemetry.EventField(telemetry.EventWatchStopped))
			return ctx.Err()
		case <-w.app.Expired():
			w.logger.Warn("watch stopped",
				telemetry.EventField(telemetry.EventWatchStopped),
				zap.String("reason", "session expired"),
			)
			return domain.ErrSessionExpired
		case <-w.ticks:
			if err := w.refresh(ctx, ctrl); err != nil {
				return err
			}
		}
	}
}

func (w *ExecutionWatcher) requestTick() {
	select {
	case w.ticks <- struct{}{}:
	default:
	}
}

// refresh re-reads the execution list synchronously and feeds the result
// to the poller. A transient failure retries on the next tick; when the
// poller is idle (the initial fetch included) a retry tick is scheduled
// so the failure cannot silence the watch. An authentication failure
// ends the watch.
func (w *ExecutionWatcher) refresh(ctx context.Context, ctrl *poller.Controller) error {
	w.app.cache.Invalidate(domain.ResourceExecutions)
	executions, err := w.app.Executions(ctx, w.opts)
	if err != nil {
		if code, ok := domain.CodeFrom(err); ok && code == domain.CodeUnauthenticated {
			return err
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		w.logger.Warn("execution refresh failed", zap.Error(err))
		if ctrl.State() == poller.StateIdle {
			time.AfterFunc(w.app.config.PollInterval(), w.requestTick)
		}
		return nil
	}

	running := 0
	for _, execution := range executions {
		if execution.Status.InProgress() {
			running++
		}
	}
	w.mu.Lock()
	w.inProgress = running
	w.mu.Unlock()

	if w.onUpdate != nil {
		w.onUpdate(executions)
	}
	ctrl.Observe(executions)
	return nil
}

// Health reports the watch state for the observability endpoint.
func (w *ExecutionWatcher) Health() map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	state := poller.StateIdle
	if w.ctrl != nil {
		state = w.ctrl.State()
	}
	return map[string]any{
		"poller":     string(state),
		"inProgress": w.inProgress,
	}
}
