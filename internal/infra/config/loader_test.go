package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentctl/internal/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	loader := NewLoader(nil)

	cfg, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, domain.DefaultRequestTimeout, cfg.RequestTimeout())
	assert.Equal(t, domain.DefaultPollInterval, cfg.PollInterval())
	assert.Equal(t, domain.DefaultCacheGCGrace, cfg.Cache.GCGrace())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
endpoint: https://platform.example.com
requestTimeoutSeconds: 10
pollIntervalSeconds: 2
freshness:
  executions: 1
  agents: 120
cache:
  gcGraceSeconds: 60
observability:
  enableMetrics: true
  listenAddress: 127.0.0.1:9900
`)

	loader := NewLoader(nil)
	cfg, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://platform.example.com", cfg.Endpoint)
	assert.Equal(t, 10, cfg.RequestTimeoutSeconds)
	assert.Equal(t, 2, cfg.PollIntervalSeconds)
	assert.Equal(t, 1, cfg.FreshnessSeconds["executions"])
	assert.Equal(t, 120, cfg.FreshnessSeconds["agents"])
	assert.Equal(t, 60, cfg.Cache.GCGraceSeconds)
	assert.True(t, cfg.Observability.EnableMetrics)
	assert.Equal(t, "127.0.0.1:9900", cfg.Observability.ListenAddress)
	assert.Equal(t, domain.DefaultCacheGCInterval, cfg.Cache.GCInterval(), "unset fields keep their defaults")
}

func TestLoad_ExpandsEnvironmentReferences(t *testing.T) {
	t.Setenv("PLATFORM_HOST", "platform.internal:8443")
	path := writeConfigFile(t, "endpoint: https://${PLATFORM_HOST}\n")

	loader := NewLoader(nil)
	cfg, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://platform.internal:8443", cfg.Endpoint)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad endpoint scheme",
			content: "endpoint: ftp://platform.example.com\n",
			wantErr: "endpoint must be a valid http(s) URL",
		},
		{
			name:    "non-positive timeout",
			content: "requestTimeoutSeconds: 0\n",
			wantErr: "requestTimeoutSeconds must be > 0",
		},
		{
			name:    "negative freshness",
			content: "freshness:\n  agents: -5\n",
			wantErr: "freshness.agents must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			loader := NewLoader(nil)

			_, err := loader.Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "endpoint: [unclosed\n")
	loader := NewLoader(nil)

	_, err := loader.Load(context.Background(), path)
	assert.Error(t, err)
}

func TestExpandConfigEnv_ReportsMissingVariables(t *testing.T) {
	expanded, missing := expandConfigEnv([]byte("endpoint: https://${AGENTCTL_NO_SUCH_VAR}\n"))

	assert.Contains(t, expanded, "endpoint: https://")
	assert.Equal(t, []string{"AGENTCTL_NO_SUCH_VAR"}, missing)
}
