package main

import (
	"os/signal"
	"syscall"

	app "github.com/mohammadpnp/user-pipeline/internal/application/user"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/file"
	"github.com/spf13/cobra"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import users from a spreadsheet on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := root.container(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			maxBytes, err := c.Config.Import.MaxUploadBytes()
			if err != nil {
				return err
			}
			source := file.NewLocalSource(c.Config.Import.BaseDir, maxBytes)
			f, err := source.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			out, err := c.Import.Execute(ctx, app.ImportUsersFromSpreadsheetInput{Content: f, Details: details})
			if printErr := printJSON(cmd.OutOrStdout(), out); printErr != nil && err == nil {
				err = printErr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&details, "details", false, "include per-row failures in the summary")
	return cmd
}
