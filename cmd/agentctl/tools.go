package main

import (
	"context"

	"github.com/spf13/cobra"

	"agentctl/internal/app"
	"agentctl/internal/domain"
	"agentctl/internal/infra/api"
)

func newToolsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage tool definitions",
	}
	cmd.AddCommand(
		newToolsListCmd(opts),
		newToolsGetCmd(opts),
		newToolsCreateCmd(opts),
		newToolsUpdateCmd(opts),
		newToolsDeleteCmd(opts),
	)
	return cmd
}

func newToolsListCmd(opts *cliOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				tools, err := a.Tools(ctx, domain.ListOptions{Limit: limit})
				if err != nil {
					return err
				}
				return printTools(tools, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	return cmd
}

func newToolsGetCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				tool, err := a.Tool(ctx, args[0])
				if err != nil {
					return err
				}
				return printTool(tool, opts.jsonOutput)
			})
		},
	}
}

func newToolsCreateCmd(opts *cliOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tool from a JSON payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var input api.ToolInput
			if err := decodePayloadFile(file, &input); err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				tool, err := a.CreateTool(ctx, input)
				if err != nil {
					return err
				}
				return printTool(tool, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "payload file, or - for stdin")
	return cmd
}

func newToolsUpdateCmd(opts *cliOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a tool from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input api.ToolInput
			if err := decodePayloadFile(file, &input); err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				tool, err := a.UpdateTool(ctx, args[0], input)
				if err != nil {
					return err
				}
				return printTool(tool, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "payload file, or - for stdin")
	return cmd
}

func newToolsDeleteCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return a.DeleteTool(ctx, args[0])
			})
		},
	}
}
