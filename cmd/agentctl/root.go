package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"agentctl/internal/app"
	"agentctl/internal/domain"
	infraConfig "agentctl/internal/infra/config"
	"agentctl/internal/infra/session"
	"agentctl/internal/infra/telemetry"
)

type cliOptions struct {
	endpoint       string
	configPath     string
	sessionPath    string
	timeoutSeconds int
	jsonOutput     bool
	verbose        bool
	logger         *zap.Logger

	endpointSet bool
	timeoutSet  bool
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{
		endpoint:       domain.DefaultEndpoint,
		timeoutSeconds: int(domain.DefaultRequestTimeout.Seconds()),
		logger:         zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "agentctl",
		Short: "CLI client for the agent control platform",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			applyRootFlagBindings(cmd, &opts)
			if opts.verbose {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				opts.logger = logger
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.endpoint, "endpoint", opts.endpoint, "platform base URL")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to agentctl.yaml (defaults to the user config dir)")
	root.PersistentFlags().StringVar(&opts.sessionPath, "session-db", "", "path to the session database (defaults to the user config dir)")
	root.PersistentFlags().IntVar(&opts.timeoutSeconds, "timeout", opts.timeoutSeconds, "request timeout in seconds")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(&opts),
		newLogoutCmd(&opts),
		newAgentsCmd(&opts),
		newToolsCmd(&opts),
		newTemplatesCmd(&opts),
		newIntegrationsCmd(&opts),
		newExecutionsCmd(&opts),
		newDashboardCmd(&opts),
	)

	return root
}

func applyRootFlagBindings(cmd *cobra.Command, opts *cliOptions) {
	flags := cmd.Flags()
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "endpoint":
			opts.endpoint, _ = flags.GetString("endpoint")
			opts.endpointSet = true
		case "config":
			opts.configPath, _ = flags.GetString("config")
		case "session-db":
			opts.sessionPath, _ = flags.GetString("session-db")
		case "timeout":
			opts.timeoutSeconds, _ = flags.GetInt("timeout")
			opts.timeoutSet = true
		case "json":
			opts.jsonOutput, _ = flags.GetBool("json")
		case "verbose":
			opts.verbose, _ = flags.GetBool("verbose")
		}
	})
}

func resolveConfigPath(opts *cliOptions) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return infraConfig.DefaultPath()
}

// loadClientConfig resolves the effective config: file values first, then
// explicit flags on top.
func loadClientConfig(ctx context.Context, opts *cliOptions) (domain.ClientConfig, error) {
	path, err := resolveConfigPath(opts)
	if err != nil {
		return domain.ClientConfig{}, err
	}

	loader := infraConfig.NewLoader(opts.logger)
	cfg, err := loader.Load(ctx, path)
	if err != nil {
		return domain.ClientConfig{}, err
	}

	if opts.endpointSet {
		cfg.Endpoint = opts.endpoint
	}
	if opts.timeoutSet {
		cfg.RequestTimeoutSeconds = opts.timeoutSeconds
	}
	return cfg, nil
}

// buildApp assembles the application and its session store. The returned
// cleanup must run when the command finishes.
func buildApp(ctx context.Context, opts *cliOptions, metrics telemetry.Metrics) (*app.App, func(), error) {
	cfg, err := loadClientConfig(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	sessionPath := opts.sessionPath
	if sessionPath == "" {
		resolved, err := session.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		sessionPath = resolved
	}
	sessions, err := session.Open(sessionPath)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(app.Options{
		Config:   cfg,
		Sessions: sessions,
		Logger:   opts.logger,
		Metrics:  metrics,
	})
	if err != nil {
		_ = sessions.Close()
		return nil, nil, err
	}

	cleanup := func() {
		a.Close()
		_ = sessions.Close()
	}
	return a, cleanup, nil
}

// runWithApp builds the application for a single command invocation and
// tears it down afterwards.
func runWithApp(cmd *cobra.Command, opts *cliOptions, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()

	a, cleanup, err := buildApp(ctx, opts, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	return friendlyExit(fn(ctx, a))
}

// friendlyExit converts normalized client failures into terse CLI errors
// carrying the user-facing message.
func friendlyExit(err error) error {
	if err == nil {
		return nil
	}
	var exitErr exitError
	if errors.As(err, &exitErr) {
		return err
	}

	code := 1
	if errCode, ok := domain.CodeFrom(err); ok && errCode == domain.CodeUnauthenticated {
		code = 3
	}
	return exitWithMessage(code, domain.FriendlyMessageFrom(err))
}
