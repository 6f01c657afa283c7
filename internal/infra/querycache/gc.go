package querycache

import (
	"time"

	"agentctl/internal/infra/telemetry"
)

// StartGC begins the periodic sweep that evicts entries with no
// subscribers once the grace period has elapsed since their last access.
func (s *Store) StartGC(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	s.mu.Lock()
	if s.gcTicker != nil {
		s.mu.Unlock()
		return
	}
	s.gcTicker = time.NewTicker(interval)
	s.stopGC = make(chan struct{})
	stop := s.stopGC
	ticker := s.gcTicker
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-stop:
				return
			}
		}
	}()
}

// StopGC ends the sweep.
func (s *Store) StopGC() {
	s.mu.Lock()
	if s.gcTicker == nil {
		s.mu.Unlock()
		return
	}
	s.gcTicker.Stop()
	s.gcTicker = nil
	close(s.stopGC)
	s.stopGC = nil
	s.mu.Unlock()
}

func (s *Store) sweep() {
	now := time.Now()
	var evicted []string

	s.mu.Lock()
	for k, e := range s.entries {
		if e.refs > 0 {
			continue
		}
		if now.Sub(e.lastAccess) < s.gcGrace {
			continue
		}
		delete(s.entries, k)
		evicted = append(evicted, k)
	}
	s.mu.Unlock()

	for _, k := range evicted {
		s.logger.Debug("evicted cache entry",
			telemetry.EventField(telemetry.EventCacheEvict),
			telemetry.CacheKeyField(k),
		)
	}
}
