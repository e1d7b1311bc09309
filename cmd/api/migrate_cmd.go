package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/mohammadpnp/user-pipeline/internal/application/migration"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every pending legacy user into the new store",
		Long: "Copy every pending legacy user into the new store.\n" +
			"An interrupted run is resumed by running the command again.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := root.container(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			out, err := c.BulkMigrate.Execute(ctx, migration.BulkMigrateInput{Details: details})
			if errors.Is(err, migration.ErrNoLegacyUsers) {
				c.Logger.Info(err.Error())
				return nil
			}
			if printErr := printJSON(cmd.OutOrStdout(), out); printErr != nil && err == nil {
				err = printErr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&details, "details", false, "include per-record failures in the summary")
	return cmd
}
