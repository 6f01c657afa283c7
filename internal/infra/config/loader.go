// Package config loads and validates the agentctl configuration file.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"agentctl/internal/domain"
)

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "agentctl", "agentctl.yaml"), nil
}

func newClientViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("endpoint", domain.DefaultEndpoint)
	v.SetDefault("requestTimeoutSeconds", int(domain.DefaultRequestTimeout.Seconds()))
	v.SetDefault("pollIntervalSeconds", int(domain.DefaultPollInterval.Seconds()))
	v.SetDefault("cache.gcGraceSeconds", int(domain.DefaultCacheGCGrace.Seconds()))
	v.SetDefault("cache.gcIntervalSeconds", int(domain.DefaultCacheGCInterval.Seconds()))
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	return v
}

type rawConfig struct {
	Endpoint              string                 `mapstructure:"endpoint"`
	RequestTimeoutSeconds int                    `mapstructure:"requestTimeoutSeconds"`
	PollIntervalSeconds   int                    `mapstructure:"pollIntervalSeconds"`
	Freshness             map[string]int         `mapstructure:"freshness"`
	Cache                 rawCacheConfig         `mapstructure:"cache"`
	Observability         rawObservabilityConfig `mapstructure:"observability"`
}

type rawCacheConfig struct {
	GCGraceSeconds    int `mapstructure:"gcGraceSeconds"`
	GCIntervalSeconds int `mapstructure:"gcIntervalSeconds"`
}

type rawObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
	EnableMetrics bool   `mapstructure:"enableMetrics"`
}

// Load reads, env-expands, and validates the config at path. A missing
// file is not an error: defaults apply, matching a fresh install.
func (l *Loader) Load(ctx context.Context, path string) (domain.ClientConfig, error) {
	if path == "" {
		return domain.ClientConfig{}, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l.normalize(rawConfigDefaults())
		}
		return domain.ClientConfig{}, fmt.Errorf("read config: %w", err)
	}

	expanded, missing := expandConfigEnv(data)
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config",
			zap.String("path", path),
			zap.Strings("missing", missing),
		)
	}

	v := newClientViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return domain.ClientConfig{}, fmt.Errorf("parse config: %w", err)
	}

	var cfg rawConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.ClientConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.ClientConfig{}, err
	}

	return l.normalize(cfg)
}

func rawConfigDefaults() rawConfig {
	v := newClientViper()
	var cfg rawConfig
	_ = v.Unmarshal(&cfg)
	return cfg
}

func (l *Loader) normalize(cfg rawConfig) (domain.ClientConfig, error) {
	var errs []string

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		errs = append(errs, "endpoint is required")
	} else if parsed, err := url.Parse(endpoint); err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		errs = append(errs, fmt.Sprintf("endpoint must be a valid http(s) URL: %q", endpoint))
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		errs = append(errs, "requestTimeoutSeconds must be > 0")
	}
	if cfg.PollIntervalSeconds <= 0 {
		errs = append(errs, "pollIntervalSeconds must be > 0")
	}
	if cfg.Cache.GCGraceSeconds <= 0 {
		errs = append(errs, "cache.gcGraceSeconds must be > 0")
	}
	if cfg.Cache.GCIntervalSeconds <= 0 {
		errs = append(errs, "cache.gcIntervalSeconds must be > 0")
	}

	for namespace, seconds := range cfg.Freshness {
		if seconds < 0 {
			errs = append(errs, fmt.Sprintf("freshness.%s must be >= 0", namespace))
		}
		if !knownNamespace(namespace) {
			l.logger.Warn("unknown resource namespace in freshness config", zap.String("namespace", namespace))
		}
	}

	listenAddr := strings.TrimSpace(cfg.Observability.ListenAddress)
	if listenAddr == "" {
		listenAddr = domain.DefaultObservabilityListenAddress
	}

	if len(errs) > 0 {
		return domain.ClientConfig{}, errors.New(strings.Join(errs, "; "))
	}

	return domain.ClientConfig{
		Endpoint:              endpoint,
		RequestTimeoutSeconds: cfg.RequestTimeoutSeconds,
		PollIntervalSeconds:   cfg.PollIntervalSeconds,
		FreshnessSeconds:      cfg.Freshness,
		Cache: domain.CacheConfig{
			GCGraceSeconds:    cfg.Cache.GCGraceSeconds,
			GCIntervalSeconds: cfg.Cache.GCIntervalSeconds,
		},
		Observability: domain.ObservabilityConfig{
			ListenAddress: listenAddr,
			EnableMetrics: cfg.Observability.EnableMetrics,
		},
	}, nil
}

func knownNamespace(namespace string) bool {
	switch namespace {
	case domain.ResourceAgents, domain.ResourceTools, domain.ResourceTemplates,
		domain.ResourceIntegrations, domain.ResourceExecutions, domain.ResourceDashboard:
		return true
	default:
		return false
	}
}
