package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"storefront-backend/models"

	"github.com/spf13/cobra"
)

func newAdminCmd(open openStoreFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office accounts",
	}
	cmd.AddCommand(
		newAdminCreateCmd(open),
		newAdminResetPasswordCmd(open),
		newAdminListCmd(open),
		newAdminDeleteCmd(open),
	)
	return cmd
}

func newAdminCreateCmd(open openStoreFunc) *cobra.Command {
	var req models.CreateAdminRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, func(ctx context.Context, s *store) error {
				admin, err := s.admins.Create(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (%s)\n", admin.Role, admin.Username, admin.ID.Hex())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "login name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&req.Role, "role", models.RoleAdmin, "admin or superadmin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAdminResetPasswordCmd(open openStoreFunc) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, func(ctx context.Context, s *store) error {
				if err := s.admins.ResetPassword(ctx, username, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %q\n", username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAdminListCmd(open openStoreFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, func(ctx context.Context, s *store) error {
				admins, err := s.admins.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "USERNAME\tEMAIL\tROLE\tLAST LOGIN")
				for _, a := range admins {
					last := "never"
					if a.LastLoginAt != nil {
						last = a.LastLoginAt.Format("2006-01-02 15:04")
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Username, a.Email, a.Role, last)
				}
				return w.Flush()
			})
		},
	}
}

func newAdminDeleteCmd(open openStoreFunc) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, func(ctx context.Context, s *store) error {
				if err := s.admins.DeleteByUsername(ctx, username); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
