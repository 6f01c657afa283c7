package domain

import "time"

const (
	DefaultEndpoint = "http://127.0.0.1:8420"

	// DefaultRequestTimeout bounds every HTTP call issued by the client.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultPollInterval is the execution watch re-fetch period while any
	// execution is in progress.
	DefaultPollInterval = 5 * time.Second

	// Freshness windows for the query cache, per resource namespace.
	// Reads inside the window return cached data without a network call.
	DefaultAgentFreshness       = 30 * time.Second
	DefaultToolFreshness        = 60 * time.Second
	DefaultTemplateFreshness    = 60 * time.Second
	DefaultIntegrationFreshness = 60 * time.Second
	DefaultExecutionFreshness   = 3 * time.Second
	DefaultDashboardFreshness   = 15 * time.Second

	// DefaultCacheGCGrace is how long an entry with no subscribers survives
	// before the sweep evicts it.
	DefaultCacheGCGrace    = 5 * time.Minute
	DefaultCacheGCInterval = time.Minute

	DefaultObservabilityListenAddress = "127.0.0.1:9464"
)

// Resource namespaces used as cache key prefixes and metric labels.
const (
	ResourceAgents       = "agents"
	ResourceTools        = "tools"
	ResourceTemplates    = "templates"
	ResourceIntegrations = "integrations"
	ResourceExecutions   = "executions"
	ResourceDashboard    = "dashboard"
	ResourceAuth         = "auth"
)
