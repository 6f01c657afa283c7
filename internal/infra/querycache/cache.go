// Package querycache memoizes platform reads under composite keys and
// declares how mutations invalidate them. The store is constructed
// explicitly and passed by reference; there is no package-level singleton,
// so tests build and reset their own instances.
//
// Policy, per namespace:
//   - reads inside the freshness window return cached data with no call
//   - reads past the window return the stale value immediately and
//     revalidate in the background (stale-while-revalidate)
//   - concurrent reads of one key share a single in-flight call
//   - successful mutations invalidate the namespace; failed ones nothing
//   - failed reads keep the previous value and mark the entry errored
package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"agentctl/internal/domain"
	"agentctl/internal/infra/telemetry"
)

// Fetch loads fresh data for one key. The cache guarantees at most one
// Fetch per key is in flight at a time.
type Fetch func(ctx context.Context) (any, error)

// Snapshot is the externally visible state of one cache entry.
type Snapshot struct {
	Value         any
	Err           error
	LastFetchedAt time.Time
	HasValue      bool
}

type entry struct {
	value      any
	err        error
	hasValue   bool
	invalid    bool
	fetchedAt  time.Time
	lastAccess time.Time
	refs       int
}

type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	flight  singleflight.Group

	freshness        map[string]time.Duration
	defaultFreshness time.Duration
	gcGrace          time.Duration
	revalidateWait   time.Duration

	gcTicker *time.Ticker
	stopGC   chan struct{}

	logger  *zap.Logger
	metrics telemetry.Metrics
}

type StoreOptions struct {
	// Freshness maps a namespace to its window; unlisted namespaces use
	// DefaultFreshness.
	Freshness        map[string]time.Duration
	DefaultFreshness time.Duration
	// GCGrace is how long an unsubscribed entry survives before eviction.
	GCGrace time.Duration
	// RevalidateTimeout bounds background refreshes, which run detached
	// from the triggering caller's context.
	RevalidateTimeout time.Duration
	Logger            *zap.Logger
	Metrics           telemetry.Metrics
}

func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var metrics telemetry.Metrics = opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	defaultFreshness := opts.DefaultFreshness
	if defaultFreshness <= 0 {
		defaultFreshness = domain.DefaultAgentFreshness
	}
	gcGrace := opts.GCGrace
	if gcGrace <= 0 {
		gcGrace = domain.DefaultCacheGCGrace
	}
	revalidateWait := opts.RevalidateTimeout
	if revalidateWait <= 0 {
		revalidateWait = domain.DefaultRequestTimeout
	}
	freshness := make(map[string]time.Duration, len(opts.Freshness))
	for namespace, window := range opts.Freshness {
		freshness[namespace] = window
	}
	return &Store{
		entries:          make(map[string]*entry),
		freshness:        freshness,
		defaultFreshness: defaultFreshness,
		gcGrace:          gcGrace,
		revalidateWait:   revalidateWait,
		logger:           logger.Named("querycache"),
		metrics:          metrics,
	}
}

// DefaultFreshness returns the per-resource windows used by the app layer.
func DefaultFreshness() map[string]time.Duration {
	return map[string]time.Duration{
		domain.ResourceAgents:       domain.DefaultAgentFreshness,
		domain.ResourceTools:        domain.DefaultToolFreshness,
		domain.ResourceTemplates:    domain.DefaultTemplateFreshness,
		domain.ResourceIntegrations: domain.DefaultIntegrationFreshness,
		domain.ResourceExecutions:   domain.DefaultExecutionFreshness,
		domain.ResourceDashboard:    domain.DefaultDashboardFreshness,
	}
}

// Read returns the data for key, fetching through fn when the entry is
// missing, invalidated, or errored with no prior value. Stale entries are
// served immediately while a background revalidation runs. A failed fetch
// keeps any previous value in place and returns the error.
func (s *Store) Read(ctx context.Context, key Key, fn Fetch) (any, error) {
	k := key.String()
	now := time.Now()

	s.mu.Lock()
	e := s.ensureLocked(k)
	e.lastAccess = now

	if e.hasValue && !e.invalid {
		age := now.Sub(e.fetchedAt)
		value := e.value
		if age < s.freshnessFor(key.Namespace) {
			s.mu.Unlock()
			s.metrics.ObserveCacheRead(key.Namespace, telemetry.CacheOutcomeHit)
			return value, nil
		}
		s.mu.Unlock()
		s.metrics.ObserveCacheRead(key.Namespace, telemetry.CacheOutcomeStale)
		s.revalidate(key, fn)
		return value, nil
	}
	hadValue := e.hasValue
	prior := e.value
	s.mu.Unlock()

	value, err, _ := s.flight.Do(k, func() (any, error) {
		return fn(ctx)
	})
	s.settle(key, value, err)
	if err != nil {
		s.metrics.ObserveCacheRead(key.Namespace, telemetry.CacheOutcomeError)
		if hadValue {
			// Invalidated entry whose refetch failed: the prior value is
			// still the best known state, but the caller learns the read
			// failed.
			return prior, err
		}
		return nil, err
	}
	s.metrics.ObserveCacheRead(key.Namespace, telemetry.CacheOutcomeMiss)
	return value, nil
}

// ReadAs is the typed wrapper over Store.Read.
func ReadAs[T any](ctx context.Context, s *Store, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	value, err := s.Read(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if value == nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("querycache: key %s holds %T", key, value)
	}
	return typed, err
}

// revalidate refreshes a stale entry in the background. The flight group
// collapses concurrent revalidations of the same key, so a tick arriving
// while the previous refresh is still running is harmless.
func (s *Store) revalidate(key Key, fn Fetch) {
	k := key.String()
	ch := s.flight.DoChan(k, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.revalidateWait)
		defer cancel()
		return fn(ctx)
	})
	go func() {
		result := <-ch
		s.settle(key, result.Val, result.Err)
		if result.Err != nil {
			s.logger.Warn("background refresh failed",
				telemetry.EventField(telemetry.EventCacheRefresh),
				telemetry.CacheKeyField(k),
				zap.Error(result.Err),
			)
		}
	}()
}

// settle records a completed fetch. Success replaces the value wholesale;
// failure keeps the previous value and marks the entry errored.
func (s *Store) settle(key Key, value any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ensureLocked(key.String())
	if err != nil {
		e.err = err
		return
	}
	e.value = value
	e.hasValue = true
	e.err = nil
	e.invalid = false
	e.fetchedAt = time.Now()
}

// OnMutation applies the invalidation rule after a mutation against a
// resource: success invalidates every key in the namespace, failure
// invalidates nothing.
func (s *Store) OnMutation(namespace string, err error) {
	if err != nil {
		return
	}
	s.Invalidate(namespace)
}

// Invalidate forces the next read of every key in the namespace to bypass
// the cache and fetch. Values are retained so a failed refetch still has a
// last known-good state.
func (s *Store) Invalidate(namespace string) int {
	s.mu.Lock()
	count := 0
	for k, e := range s.entries {
		key := parseKey(k)
		if key.inNamespace(namespace) {
			e.invalid = true
			count++
		}
	}
	s.mu.Unlock()
	if count > 0 {
		s.metrics.ObserveCacheInvalidation(namespace, count)
	}
	return count
}

// Snapshot reports the current state of a key without fetching.
func (s *Store) Snapshot(key Key) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Value:         e.value,
		Err:           e.err,
		LastFetchedAt: e.fetchedAt,
		HasValue:      e.hasValue,
	}
}

// Subscribe pins a key against garbage collection; Unsubscribe releases
// the pin. An entry with no subscribers is evicted once the grace period
// elapses after its last access.
func (s *Store) Subscribe(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ensureLocked(key.String())
	e.refs++
}

func (s *Store) Unsubscribe(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	if !ok {
		return
	}
	if e.refs > 0 {
		e.refs--
	}
	e.lastAccess = time.Now()
}

// Reset drops every entry. Intended for teardown between test cases.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

// Len returns the number of resident entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) ensureLocked(k string) *entry {
	e, ok := s.entries[k]
	if !ok {
		e = &entry{lastAccess: time.Now()}
		s.entries[k] = e
	}
	return e
}

func (s *Store) freshnessFor(namespace string) time.Duration {
	// Detail keys (agents/5) inherit the namespace window (agents).
	for candidate := namespace; ; {
		if window, ok := s.freshness[candidate]; ok {
			return window
		}
		idx := lastSlash(candidate)
		if idx < 0 {
			return s.defaultFreshness
		}
		candidate = candidate[:idx]
	}
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

func parseKey(k string) Key {
	for i := 0; i < len(k); i++ {
		if k[i] == '?' {
			return Key{Namespace: k[:i], Params: k[i+1:]}
		}
	}
	return Key{Namespace: k}
}
