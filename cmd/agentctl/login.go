package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"agentctl/internal/app"
)

func newLoginCmd(opts *cliOptions) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the platform and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("AGENTCTL_PASSWORD")
			}
			if username == "" || password == "" {
				return errors.New("--username and --password (or AGENTCTL_PASSWORD) are required")
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				sess, err := a.Login(ctx, username, password)
				if err != nil {
					return err
				}
				return printSession(sess, opts.jsonOutput)
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "platform user name")
	cmd.Flags().StringVar(&password, "password", "", "platform password (prefer AGENTCTL_PASSWORD)")
	return cmd
}

func newLogoutCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the server session and clear the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return a.Logout(ctx)
			})
		},
	}
}
