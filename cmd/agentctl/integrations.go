package main

import (
	"context"

	"github.com/spf13/cobra"

	"agentctl/internal/app"
	"agentctl/internal/domain"
	"agentctl/internal/infra/api"
)

func newIntegrationsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "Manage external tool integrations",
	}
	cmd.AddCommand(
		newIntegrationsListCmd(opts),
		newIntegrationsGetCmd(opts),
		newIntegrationsCreateCmd(opts),
		newIntegrationsUpdateCmd(opts),
		newIntegrationsDeleteCmd(opts),
	)
	return cmd
}

func newIntegrationsListCmd(opts *cliOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List integrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				integrations, err := a.Integrations(ctx, domain.ListOptions{Limit: limit})
				if err != nil {
					return err
				}
				return printIntegrations(integrations, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	return cmd
}

func newIntegrationsGetCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one integration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				integration, err := a.Integration(ctx, args[0])
				if err != nil {
					return err
				}
				return printIntegration(integration, opts.jsonOutput)
			})
		},
	}
}

func newIntegrationsCreateCmd(opts *cliOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an integration from a JSON payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var input api.IntegrationInput
			if err := decodePayloadFile(file, &input); err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				integration, err := a.CreateIntegration(ctx, input)
				if err != nil {
					return err
				}
				return printIntegration(integration, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "payload file, or - for stdin")
	return cmd
}

func newIntegrationsUpdateCmd(opts *cliOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an integration from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input api.IntegrationInput
			if err := decodePayloadFile(file, &input); err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				integration, err := a.UpdateIntegration(ctx, args[0], input)
				if err != nil {
					return err
				}
				return printIntegration(integration, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "payload file, or - for stdin")
	return cmd
}

func newIntegrationsDeleteCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an integration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return a.DeleteIntegration(ctx, args[0])
			})
		},
	}
}
