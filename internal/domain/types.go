package domain

import (
	"encoding/json"
	"time"
)

// ExecutionStatus tracks the lifecycle of an agent execution on the platform.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// InProgress reports whether the execution still needs monitoring.
func (s ExecutionStatus) InProgress() bool {
	return s == ExecutionPending || s == ExecutionRunning
}

// Agent is a managed agent definition.
type Agent struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Model        string            `json:"model"`
	SystemPrompt string            `json:"systemPrompt,omitempty"`
	ToolIDs      []string          `json:"toolIds,omitempty"`
	TemplateID   string            `json:"templateId,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	Enabled      bool              `json:"enabled"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Tool is a callable capability an agent can be granted.
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Parameters is the JSON Schema describing the tool's input payload.
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Integration string          `json:"integration,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Template is a reusable agent configuration blueprint.
type Template struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Model        string    `json:"model,omitempty"`
	SystemPrompt string    `json:"systemPrompt,omitempty"`
	ToolIDs      []string  `json:"toolIds,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Integration is an external-tool connection configuration. Secrets never
// round-trip through the client; the API reports only whether a credential
// is set.
type Integration struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Kind          string            `json:"kind"`
	Endpoint      string            `json:"endpoint,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	CredentialSet bool              `json:"credentialSet"`
	Enabled       bool              `json:"enabled"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Execution is one run of an agent.
type Execution struct {
	ID         string          `json:"id"`
	AgentID    string          `json:"agentId"`
	Status     ExecutionStatus `json:"status"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
	DurationMs int64           `json:"durationMs,omitempty"`
}

// DashboardSummary aggregates execution analytics for the dashboard view.
type DashboardSummary struct {
	TotalExecutions   int            `json:"totalExecutions"`
	RunningExecutions int            `json:"runningExecutions"`
	FailedLast24h     int            `json:"failedLast24h"`
	AvgDurationMs     int64          `json:"avgDurationMs"`
	ExecutionsByAgent map[string]int `json:"executionsByAgent,omitempty"`
	GeneratedAt       time.Time      `json:"generatedAt"`
}

// ListOptions filters a collection read. The zero value lists everything.
type ListOptions struct {
	AgentID string
	Status  ExecutionStatus
	Label   string
	Limit   int
}

// AnyInProgress reports whether any execution in the collection is still
// pending or running. This is the authoritative predicate the adaptive
// poller consults.
func AnyInProgress(executions []Execution) bool {
	for _, execution := range executions {
		if execution.Status.InProgress() {
			return true
		}
	}
	return false
}
