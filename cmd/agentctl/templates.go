package main

import (
	"context"

	"github.com/spf13/cobra"

	"agentctl/internal/app"
	"agentctl/internal/domain"
	"agentctl/internal/infra/api"
)

func newTemplatesCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage agent templates",
	}
	cmd.AddCommand(
		newTemplatesListCmd(opts),
		newTemplatesGetCmd(opts),
		newTemplatesCreateCmd(opts),
		newTemplatesUpdateCmd(opts),
		newTemplatesDeleteCmd(opts),
	)
	return cmd
}

func newTemplatesListCmd(opts *cliOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				templates, err := a.Templates(ctx, domain.ListOptions{Limit: limit})
				if err != nil {
					return err
				}
				return printTemplates(templates, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	return cmd
}

func newTemplatesGetCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				template, err := a.Template(ctx, args[0])
				if err != nil {
					return err
				}
				return printTemplate(template, opts.jsonOutput)
			})
		},
	}
}

func newTemplatesCreateCmd(opts *cliOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a template from a JSON payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var input api.TemplateInput
			if err := decodePayloadFile(file, &input); err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				template, err := a.CreateTemplate(ctx, input)
				if err != nil {
					return err
				}
				return printTemplate(template, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "payload file, or - for stdin")
	return cmd
}

func newTemplatesUpdateCmd(opts *cliOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a template from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input api.TemplateInput
			if err := decodePayloadFile(file, &input); err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				template, err := a.UpdateTemplate(ctx, args[0], input)
				if err != nil {
					return err
				}
				return printTemplate(template, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "payload file, or - for stdin")
	return cmd
}

func newTemplatesDeleteCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return a.DeleteTemplate(ctx, args[0])
			})
		},
	}
}
