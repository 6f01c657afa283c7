package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldResource   = "resource"
	FieldCacheKey   = "cacheKey"
	FieldHTTPStatus = "httpStatus"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
)

const (
	EventRequestFailure = "request_failure"
	EventAuthExpired    = "auth_expired"
	EventAccessDenied   = "access_denied"
	EventCacheRefresh   = "cache_refresh"
	EventCacheEvict     = "cache_evict"
	EventPollerArmed    = "poller_armed"
	EventPollerDisarmed = "poller_disarmed"
	EventWatchStopped   = "watch_stopped"
	EventConfigReload   = "config_reload"
	EventSessionCleared = "session_cleared"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ResourceField(resource string) zap.Field {
	return zap.String(FieldResource, resource)
}

func CacheKeyField(key string) zap.Field {
	return zap.String(FieldCacheKey, key)
}

func HTTPStatusField(status int) zap.Field {
	return zap.Int(FieldHTTPStatus, status)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}
