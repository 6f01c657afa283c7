// Package poller implements adaptive background refresh: a fixed-interval
// timer that is armed only while the observed collection contains work in
// progress. The controller is explicit state with Start/Stop semantics and
// a single authoritative predicate, so it is testable without any UI or
// long-running process around it.
package poller

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"agentctl/internal/domain"
	"agentctl/internal/infra/telemetry"
)

type State string

const (
	StateIdle  State = "idle"
	StateArmed State = "armed"
)

// Controller arms and disarms the refresh timer. Observe must be called
// with the latest collection after every successful fetch, manual or
// automatic; Stop is terminal and always clears the timer. The controller
// never issues overlapping refreshes itself: ticks call through the query
// cache, whose in-flight de-duplication makes a tick during a running
// fetch harmless.
type Controller struct {
	mu       sync.Mutex
	interval time.Duration
	ticker   *time.Ticker
	stop     chan struct{}
	stopped  bool

	shouldPoll func([]domain.Execution) bool
	onTick     func()

	logger  *zap.Logger
	metrics telemetry.Metrics
}

type Options struct {
	// Interval between refreshes while armed; defaults to
	// domain.DefaultPollInterval.
	Interval time.Duration
	// ShouldPoll decides whether the collection warrants polling;
	// defaults to domain.AnyInProgress.
	ShouldPoll func([]domain.Execution) bool
	// OnTick runs on every interval tick while armed.
	OnTick  func()
	Logger  *zap.Logger
	Metrics telemetry.Metrics
}

func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var metrics telemetry.Metrics = opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}
	shouldPoll := opts.ShouldPoll
	if shouldPoll == nil {
		shouldPoll = domain.AnyInProgress
	}
	return &Controller{
		interval:   interval,
		shouldPoll: shouldPoll,
		onTick:     opts.OnTick,
		logger:     logger.Named("poller"),
		metrics:    metrics,
	}
}

// Observe re-evaluates the predicate against the latest collection and
// transitions the timer accordingly.
func (c *Controller) Observe(executions []domain.Execution) {
	if c.shouldPoll(executions) {
		c.arm()
		return
	}
	c.disarm()
}

// State reports the current timer state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticker != nil {
		return StateArmed
	}
	return StateIdle
}

// Stop disarms the timer permanently. Further Observe calls are no-ops.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.disarm()
}

func (c *Controller) arm() {
	c.mu.Lock()
	if c.stopped || c.ticker != nil {
		c.mu.Unlock()
		return
	}
	c.ticker = time.NewTicker(c.interval)
	c.stop = make(chan struct{})
	ticker := c.ticker
	stop := c.stop
	c.mu.Unlock()

	c.metrics.ObservePollerTransition(true)
	c.logger.Debug("poller armed",
		telemetry.EventField(telemetry.EventPollerArmed),
		telemetry.DurationField(c.interval),
	)

	go func() {
		for {
			select {
			case <-ticker.C:
				c.metrics.ObservePollerTick()
				if c.onTick != nil {
					c.onTick()
				}
			case <-stop:
				return
			}
		}
	}()
}

func (c *Controller) disarm() {
	c.mu.Lock()
	if c.ticker == nil {
		c.mu.Unlock()
		return
	}
	c.ticker.Stop()
	c.ticker = nil
	close(c.stop)
	c.stop = nil
	c.mu.Unlock()

	c.metrics.ObservePollerTransition(false)
	c.logger.Debug("poller disarmed",
		telemetry.EventField(telemetry.EventPollerDisarmed),
	)
}
