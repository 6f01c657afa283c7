package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentctl/internal/app"
	"agentctl/internal/domain"
	"agentctl/internal/infra/api"
	infraConfig "agentctl/internal/infra/config"
	"agentctl/internal/infra/telemetry"
)

func newExecutionsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executions",
		Short: "Inspect and control agent executions",
	}
	cmd.AddCommand(
		newExecutionsListCmd(opts),
		newExecutionsGetCmd(opts),
		newExecutionsStartCmd(opts),
		newExecutionsCancelCmd(opts),
		newExecutionsWatchCmd(opts),
	)
	return cmd
}

func executionListFlags(cmd *cobra.Command, agentID *string, status *string, limit *int) {
	cmd.Flags().StringVar(agentID, "agent", "", "filter by agent id")
	cmd.Flags().StringVar(status, "status", "", "filter by status (pending|running|completed|failed|cancelled)")
	cmd.Flags().IntVar(limit, "limit", 0, "maximum number of results")
}

func newExecutionsListCmd(opts *cliOptions) *cobra.Command {
	var agentID, status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List executions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				executions, err := a.Executions(ctx, domain.ListOptions{
					AgentID: agentID,
					Status:  domain.ExecutionStatus(status),
					Limit:   limit,
				})
				if err != nil {
					return err
				}
				return printExecutions(executions, opts.jsonOutput)
			})
		},
	}
	executionListFlags(cmd, &agentID, &status, &limit)
	return cmd
}

func newExecutionsGetCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				execution, err := a.Execution(ctx, args[0])
				if err != nil {
					return err
				}
				return printExecution(execution, opts.jsonOutput)
			})
		},
	}
}

func newExecutionsStartCmd(opts *cliOptions) *cobra.Command {
	var agentID, toolID, argsJSON string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start an execution",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if agentID == "" {
				return errors.New("--agent is required")
			}
			input := api.StartExecutionInput{AgentID: agentID, ToolID: toolID}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &input.Arguments); err != nil {
					return fmt.Errorf("decode --args: %w", err)
				}
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				execution, err := a.StartExecution(ctx, input)
				if err != nil {
					return err
				}
				return printExecution(execution, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "", "agent id to run")
	cmd.Flags().StringVar(&toolID, "tool", "", "tool id to invoke (optional)")
	cmd.Flags().StringVar(&argsJSON, "args", "", "tool arguments as a JSON object")
	return cmd
}

func newExecutionsCancelCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a running execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				execution, err := a.CancelExecution(ctx, args[0])
				if err != nil {
					return err
				}
				return printExecution(execution, opts.jsonOutput)
			})
		},
	}
}

func newExecutionsWatchCmd(opts *cliOptions) *cobra.Command {
	var agentID, status string
	var limit int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow executions, polling while any is in progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			registry := prometheus.NewRegistry()
			metrics := telemetry.NewPrometheusMetrics(registry)

			a, cleanup, err := buildApp(ctx, opts, metrics)
			if err != nil {
				return err
			}
			defer cleanup()

			// Config edits during a long watch are picked up for logging;
			// endpoint or timing changes take effect on the next invocation.
			if path, err := resolveConfigPath(opts); err == nil {
				watcher := infraConfig.NewWatcher(infraConfig.NewLoader(opts.logger), path, nil, opts.logger)
				go func() { _ = watcher.Run(ctx) }()
			}

			watcher := a.NewExecutionWatcher(app.WatchOptions{
				List: domain.ListOptions{
					AgentID: agentID,
					Status:  domain.ExecutionStatus(status),
					Limit:   limit,
				},
				OnUpdate: func(executions []domain.Execution) {
					_ = printExecutions(executions, opts.jsonOutput)
				},
			})

			if obs := a.Config().Observability; obs.EnableMetrics {
				go func() {
					err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
						Addr:          obs.ListenAddress,
						EnableMetrics: true,
						EnableHealthz: true,
						Registry:      registry,
						Health:        watcher.Health,
					}, opts.logger)
					if err != nil {
						opts.logger.Warn("observability server exited", zap.Error(err))
					}
				}()
			}

			err = watcher.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return friendlyExit(err)
		},
	}
	executionListFlags(cmd, &agentID, &status, &limit)
	return cmd
}
