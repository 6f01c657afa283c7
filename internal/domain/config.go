package domain

import "time"

// ClientConfig is the normalized agentctl configuration.
type ClientConfig struct {
	Endpoint              string              `json:"endpoint"`
	RequestTimeoutSeconds int                 `json:"requestTimeoutSeconds"`
	PollIntervalSeconds   int                 `json:"pollIntervalSeconds"`
	FreshnessSeconds      map[string]int      `json:"freshnessSeconds,omitempty"`
	Cache                 CacheConfig         `json:"cache"`
	Observability         ObservabilityConfig `json:"observability"`
}

type CacheConfig struct {
	GCGraceSeconds    int `json:"gcGraceSeconds"`
	GCIntervalSeconds int `json:"gcIntervalSeconds"`
}

type ObservabilityConfig struct {
	ListenAddress string `json:"listenAddress"`
	EnableMetrics bool   `json:"enableMetrics"`
}

func (c ClientConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c ClientConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Freshness converts the configured per-namespace windows to durations.
// Namespaces absent from the config keep their compiled-in defaults.
func (c ClientConfig) Freshness(defaults map[string]time.Duration) map[string]time.Duration {
	windows := make(map[string]time.Duration, len(defaults)+len(c.FreshnessSeconds))
	for namespace, window := range defaults {
		windows[namespace] = window
	}
	for namespace, seconds := range c.FreshnessSeconds {
		if seconds > 0 {
			windows[namespace] = time.Duration(seconds) * time.Second
		}
	}
	return windows
}

func (c CacheConfig) GCGrace() time.Duration {
	if c.GCGraceSeconds <= 0 {
		return DefaultCacheGCGrace
	}
	return time.Duration(c.GCGraceSeconds) * time.Second
}

func (c CacheConfig) GCInterval() time.Duration {
	if c.GCIntervalSeconds <= 0 {
		return DefaultCacheGCInterval
	}
	return time.Duration(c.GCIntervalSeconds) * time.Second
}
