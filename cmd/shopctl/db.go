package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newDBCmd(open openStoreFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Drop every collection and recreate the indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			return withStore(cmd, open, func(ctx context.Context, s *store) error {
				if err := s.reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Database reset")
				return nil
			})
		},
	}
	reset.Flags().BoolVar(&yes, "yes", false, "confirm that all data will be deleted")
	cmd.AddCommand(reset)
	return cmd
}
