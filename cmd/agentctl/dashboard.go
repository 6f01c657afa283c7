package main

import (
	"context"

	"github.com/spf13/cobra"

	"agentctl/internal/app"
)

func newDashboardCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show execution analytics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				summary, err := a.Dashboard(ctx)
				if err != nil {
					return err
				}
				return printDashboard(summary, opts.jsonOutput)
			})
		},
	}
}
