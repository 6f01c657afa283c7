// Package app wires the typed API client, the query cache, and the
// execution poller into one façade the CLI commands call.
package app

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"agentctl/internal/domain"
	"agentctl/internal/infra/api"
	"agentctl/internal/infra/querycache"
	"agentctl/internal/infra/schema"
	"agentctl/internal/infra/session"
	"agentctl/internal/infra/telemetry"
)

type App struct {
	logger   *zap.Logger
	config   domain.ClientConfig
	client   *api.Client
	cache    *querycache.Store
	sessions *session.Store
	metrics  telemetry.Metrics

	expireOnce sync.Once
	expired    chan struct{}
}

type Options struct {
	Config   domain.ClientConfig
	Sessions *session.Store
	Logger   *zap.Logger
	Metrics  telemetry.Metrics
	// Transport overrides the HTTP transport; tests use this.
	Transport http.RoundTripper
}

func New(opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var metrics telemetry.Metrics = opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}

	a := &App{
		logger:   logger.Named("app"),
		config:   opts.Config,
		sessions: opts.Sessions,
		metrics:  metrics,
		expired:  make(chan struct{}),
	}

	var tokens api.TokenSource
	var clearer api.SessionClearer
	if opts.Sessions != nil {
		tokens = opts.Sessions
		clearer = opts.Sessions
	}

	client, err := api.NewClient(api.ClientOptions{
		Endpoint:      opts.Config.Endpoint,
		Timeout:       opts.Config.RequestTimeout(),
		Tokens:        tokens,
		Sessions:      clearer,
		OnAuthExpired: a.markExpired,
		Logger:        logger,
		Metrics:       metrics,
		Transport:     opts.Transport,
	})
	if err != nil {
		return nil, err
	}
	a.client = client

	a.cache = querycache.NewStore(querycache.StoreOptions{
		Freshness: opts.Config.Freshness(querycache.DefaultFreshness()),
		GCGrace:   opts.Config.Cache.GCGrace(),
		Logger:    logger,
		Metrics:   metrics,
	})
	a.cache.StartGC(opts.Config.Cache.GCInterval())

	return a, nil
}

// Client exposes the underlying API client for calls that must bypass
// the cache, such as login.
func (a *App) Client() *api.Client { return a.client }

// Cache exposes the query cache for subscription bookkeeping.
func (a *App) Cache() *querycache.Store { return a.cache }

func (a *App) Config() domain.ClientConfig { return a.config }

// Expired is closed once the platform rejects the stored credential.
func (a *App) Expired() <-chan struct{} { return a.expired }

func (a *App) markExpired() {
	a.expireOnce.Do(func() {
		a.logger.Warn("session expired",
			telemetry.EventField(telemetry.EventAuthExpired),
		)
		close(a.expired)
	})
}

func (a *App) Close() {
	a.cache.StopGC()
}

// Login authenticates, persists the session, and resets client state so
// a previously expired credential does not poison the new one.
func (a *App) Login(ctx context.Context, user, password string) (session.Session, error) {
	resp, err := a.client.Login(ctx, api.LoginInput{Username: user, Password: password})
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{
		Endpoint: a.config.Endpoint,
		Token:    resp.Token,
		User:     resp.User,
	}
	if a.sessions != nil {
		if err := a.sessions.Save(sess); err != nil {
			return session.Session{}, err
		}
	}
	a.client.ResetAuthGuard()
	a.cache.Reset()
	return sess, nil
}

// Logout best-effort revokes the server session and always clears the
// local one.
func (a *App) Logout(ctx context.Context) error {
	logoutErr := a.client.Logout(ctx)
	if a.sessions != nil {
		if err := a.sessions.Clear(); err != nil {
			return err
		}
	}
	a.cache.Reset()
	return logoutErr
}

func (a *App) Agents(ctx context.Context, opts domain.ListOptions) ([]domain.Agent, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.ListKey(domain.ResourceAgents, opts),
		func(ctx context.Context) ([]domain.Agent, error) {
			return a.client.ListAgents(ctx, opts)
		})
}

func (a *App) Agent(ctx context.Context, id string) (domain.Agent, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.DetailKey(domain.ResourceAgents, id),
		func(ctx context.Context) (domain.Agent, error) {
			return a.client.GetAgent(ctx, id)
		})
}

func (a *App) CreateAgent(ctx context.Context, input api.AgentInput) (domain.Agent, error) {
	agent, err := a.client.CreateAgent(ctx, input)
	a.cache.OnMutation(domain.ResourceAgents, err)
	return agent, err
}

func (a *App) UpdateAgent(ctx context.Context, id string, input api.AgentInput) (domain.Agent, error) {
	agent, err := a.client.UpdateAgent(ctx, id, input)
	a.cache.OnMutation(domain.ResourceAgents, err)
	return agent, err
}

func (a *App) DeleteAgent(ctx context.Context, id string) error {
	err := a.client.DeleteAgent(ctx, id)
	a.cache.OnMutation(domain.ResourceAgents, err)
	return err
}

func (a *App) Tools(ctx context.Context, opts domain.ListOptions) ([]domain.Tool, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.ListKey(domain.ResourceTools, opts),
		func(ctx context.Context) ([]domain.Tool, error) {
			return a.client.ListTools(ctx, opts)
		})
}

func (a *App) Tool(ctx context.Context, id string) (domain.Tool, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.DetailKey(domain.ResourceTools, id),
		func(ctx context.Context) (domain.Tool, error) {
			return a.client.GetTool(ctx, id)
		})
}

// CreateTool checks the parameter schema locally before the request is
// sent, so a malformed schema fails fast with a precise message.
func (a *App) CreateTool(ctx context.Context, input api.ToolInput) (domain.Tool, error) {
	if err := schema.CheckParameters(input.Parameters); err != nil {
		return domain.Tool{}, err
	}
	tool, err := a.client.CreateTool(ctx, input)
	a.cache.OnMutation(domain.ResourceTools, err)
	return tool, err
}

func (a *App) UpdateTool(ctx context.Context, id string, input api.ToolInput) (domain.Tool, error) {
	if err := schema.CheckParameters(input.Parameters); err != nil {
		return domain.Tool{}, err
	}
	tool, err := a.client.UpdateTool(ctx, id, input)
	a.cache.OnMutation(domain.ResourceTools, err)
	return tool, err
}

func (a *App) DeleteTool(ctx context.Context, id string) error {
	err := a.client.DeleteTool(ctx, id)
	a.cache.OnMutation(domain.ResourceTools, err)
	return err
}

func (a *App) Templates(ctx context.Context, opts domain.ListOptions) ([]domain.Template, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.ListKey(domain.ResourceTemplates, opts),
		func(ctx context.Context) ([]domain.Template, error) {
			return a.client.ListTemplates(ctx, opts)
		})
}

func (a *App) Template(ctx context.Context, id string) (domain.Template, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.DetailKey(domain.ResourceTemplates, id),
		func(ctx context.Context) (domain.Template, error) {
			return a.client.GetTemplate(ctx, id)
		})
}

func (a *App) CreateTemplate(ctx context.Context, input api.TemplateInput) (domain.Template, error) {
	template, err := a.client.CreateTemplate(ctx, input)
	a.cache.OnMutation(domain.ResourceTemplates, err)
	return template, err
}

func (a *App) UpdateTemplate(ctx context.Context, id string, input api.TemplateInput) (domain.Template, error) {
	template, err := a.client.UpdateTemplate(ctx, id, input)
	a.cache.OnMutation(domain.ResourceTemplates, err)
	return template, err
}

func (a *App) DeleteTemplate(ctx context.Context, id string) error {
	err := a.client.DeleteTemplate(ctx, id)
	a.cache.OnMutation(domain.ResourceTemplates, err)
	return err
}

func (a *App) Integrations(ctx context.Context, opts domain.ListOptions) ([]domain.Integration, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.ListKey(domain.ResourceIntegrations, opts),
		func(ctx context.Context) ([]domain.Integration, error) {
			return a.client.ListIntegrations(ctx, opts)
		})
}

func (a *App) Integration(ctx context.Context, id string) (domain.Integration, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.DetailKey(domain.ResourceIntegrations, id),
		func(ctx context.Context) (domain.Integration, error) {
			return a.client.GetIntegration(ctx, id)
		})
}

func (a *App) CreateIntegration(ctx context.Context, input api.IntegrationInput) (domain.Integration, error) {
	integration, err := a.client.CreateIntegration(ctx, input)
	a.cache.OnMutation(domain.ResourceIntegrations, err)
	return integration, err
}

func (a *App) UpdateIntegration(ctx context.Context, id string, input api.IntegrationInput) (domain.Integration, error) {
	integration, err := a.client.UpdateIntegration(ctx, id, input)
	a.cache.OnMutation(domain.ResourceIntegrations, err)
	return integration, err
}

func (a *App) DeleteIntegration(ctx context.Context, id string) error {
	err := a.client.DeleteIntegration(ctx, id)
	a.cache.OnMutation(domain.ResourceIntegrations, err)
	return err
}

func (a *App) Executions(ctx context.Context, opts domain.ListOptions) ([]domain.Execution, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.ListKey(domain.ResourceExecutions, opts),
		func(ctx context.Context) ([]domain.Execution, error) {
			return a.client.ListExecutions(ctx, opts)
		})
}

func (a *App) Execution(ctx context.Context, id string) (domain.Execution, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.DetailKey(domain.ResourceExecutions, id),
		func(ctx context.Context) (domain.Execution, error) {
			return a.client.GetExecution(ctx, id)
		})
}

// StartExecution validates the arguments against the tool's parameter
// schema before issuing the call. Starting an execution also touches
// agent run counters on the server, so both namespaces invalidate.
func (a *App) StartExecution(ctx context.Context, input api.StartExecutionInput) (domain.Execution, error) {
	if input.ToolID != "" {
		tool, err := a.Tool(ctx, input.ToolID)
		if err == nil {
			if err := schema.CheckArguments(tool.Parameters, input.Arguments); err != nil {
				return domain.Execution{}, err
			}
		}
	}

	execution, err := a.client.StartExecution(ctx, input)
	a.cache.OnMutation(domain.ResourceExecutions, err)
	a.cache.OnMutation(domain.ResourceDashboard, err)
	return execution, err
}

func (a *App) CancelExecution(ctx context.Context, id string) (domain.Execution, error) {
	execution, err := a.client.CancelExecution(ctx, id)
	a.cache.OnMutation(domain.ResourceExecutions, err)
	return execution, err
}

func (a *App) Dashboard(ctx context.Context) (domain.DashboardSummary, error) {
	return querycache.ReadAs(ctx, a.cache, querycache.Key{Namespace: domain.ResourceDashboard},
		func(ctx context.Context) (domain.DashboardSummary, error) {
			return a.client.DashboardSummary(ctx)
		})
}
