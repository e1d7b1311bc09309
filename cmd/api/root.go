package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mohammadpnp/user-pipeline/internal/bootstrap"
	"github.com/mohammadpnp/user-pipeline/internal/config"
	"github.com/mohammadpnp/user-pipeline/internal/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	EnvFiles []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "user-pipeline",
		Short:         "Spreadsheet user import and legacy user migration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", config.DefaultEnvFiles, "env files to load before reading the environment")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func (o *rootOptions) container(ctx context.Context) (*bootstrap.Container, error) {
	cfg, err := config.Load(o.EnvFiles...)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	return bootstrap.NewContainer(ctx, cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
