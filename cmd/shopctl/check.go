package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront-backend/client"
	"storefront-backend/logger"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var (
		apiURL    string
		retries   int
		baseDelay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe a running API",
	}
	cmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:5000/api", "API base URL")
	cmd.PersistentFlags().IntVar(&retries, "retries", client.DefaultMaxRetries, "retries for failed requests")
	cmd.PersistentFlags().DurationVar(&baseDelay, "retry-delay", client.DefaultBaseDelay, "delay before the first retry")

	newClient := func() *client.Client {
		return client.New(apiURL, client.WithRetry(retries, baseDelay), client.WithLogger(logger.Log))
	}

	health := &cobra.Command{
		Use:   "health",
		Short: "Call the health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newClient().Health(commandContext(cmd))
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status=%s database=%s\n", h.Status, h.Database)
			return nil
		},
	}

	var username, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Log in as an admin and fetch the admin profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c := newClient()
			session, err := c.AdminLogin(ctx, username, password)
			if err != nil {
				return describe(err)
			}
			var me struct {
				Admin struct {
					Username string `json:"username"`
					Role     string `json:"role"`
				} `json:"admin"`
			}
			if err := c.Do(ctx, http.MethodGet, "/admin/auth/me", nil, &me); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s); token verified for %s\n",
				session.Admin.Username, session.Admin.Role, me.Admin.Username)
			return nil
		},
	}
	login.Flags().StringVar(&username, "username", "", "admin login name")
	login.Flags().StringVar(&password, "password", "", "admin password")
	_ = login.MarkFlagRequired("username")
	_ = login.MarkFlagRequired("password")

	cmd.AddCommand(health, login)
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// describe adds the front-end destination an error maps to.
func describe(err error) error {
	if dest := client.Classify(err); dest != client.DestNone {
		return fmt.Errorf("%w (would redirect to %s)", err, dest)
	}
	return err
}
