package main

import (
	"context"

	"github.com/spf13/cobra"

	"agentctl/internal/app"
	"agentctl/internal/domain"
	"agentctl/internal/infra/api"
)

func newAgentsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage agent definitions",
	}
	cmd.AddCommand(
		newAgentsListCmd(opts),
		newAgentsGetCmd(opts),
		newAgentsCreateCmd(opts),
		newAgentsUpdateCmd(opts),
		newAgentsDeleteCmd(opts),
	)
	return cmd
}

func newAgentsListCmd(opts *cliOptions) *cobra.Command {
	var label string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				agents, err := a.Agents(ctx, domain.ListOptions{Label: label, Limit: limit})
				if err != nil {
					return err
				}
				return printAgents(agents, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "filter by label selector")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	return cmd
}

func newAgentsGetCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				agent, err := a.Agent(ctx, args[0])
				if err != nil {
					return err
				}
				return printAgent(agent, opts.jsonOutput)
			})
		},
	}
}

func newAgentsCreateCmd(opts *cliOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an agent from a JSON payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var input api.AgentInput
			if err := decodePayloadFile(file, &input); err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				agent, err := a.CreateAgent(ctx, input)
				if err != nil {
					return err
				}
				return printAgent(agent, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "payload file, or - for stdin")
	return cmd
}

func newAgentsUpdateCmd(opts *cliOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an agent from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input api.AgentInput
			if err := decodePayloadFile(file, &input); err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				agent, err := a.UpdateAgent(ctx, args[0], input)
				if err != nil {
					return err
				}
				return printAgent(agent, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "payload file, or - for stdin")
	return cmd
}

func newAgentsDeleteCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return a.DeleteAgent(ctx, args[0])
			})
		},
	}
}
