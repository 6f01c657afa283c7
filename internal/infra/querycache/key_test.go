package querycache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agentctl/internal/domain"
)

func TestListKey_DeterministicSerialization(t *testing.T) {
	tests := []struct {
		name string
		opts domain.ListOptions
		want string
	}{
		{"no filters", domain.ListOptions{}, "executions"},
		{"agent only", domain.ListOptions{AgentID: "a1"}, "executions?agentId=a1"},
		{
			"all filters in fixed order",
			domain.ListOptions{AgentID: "a1", Status: domain.ExecutionRunning, Label: "team=ops", Limit: 50},
			"executions?agentId=a1&label=team=ops&limit=50&status=running",
		},
		{"zero limit omitted", domain.ListOptions{Limit: 0}, "executions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ListKey(domain.ResourceExecutions, tt.opts).String())
		})
	}
}

func TestDetailKey(t *testing.T) {
	key := DetailKey(domain.ResourceAgents, "5")
	assert.Equal(t, "agents/5", key.String())
}

func TestKey_InNamespace(t *testing.T) {
	tests := []struct {
		name      string
		key       Key
		namespace string
		want      bool
	}{
		{"list key matches its namespace", ListKey(domain.ResourceAgents, domain.ListOptions{}), "agents", true},
		{"filtered list key matches", ListKey(domain.ResourceAgents, domain.ListOptions{Limit: 5}), "agents", true},
		{"detail key matches parent namespace", DetailKey(domain.ResourceAgents, "5"), "agents", true},
		{"other namespace does not match", ListKey(domain.ResourceTools, domain.ListOptions{}), "agents", false},
		{"prefix alone is not a match", Key{Namespace: "agentsarchive"}, "agents", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.inNamespace(tt.namespace))
		})
	}
}

func TestParseKey_RoundTrip(t *testing.T) {
	keys := []Key{
		{Namespace: "agents"},
		{Namespace: "agents", Params: "limit=10"},
		{Namespace: "agents/5"},
	}
	for _, key := range keys {
		assert.Equal(t, key, parseKey(key.String()))
	}
}
