// Command onedrive-auth signs in to Microsoft with a browser and prints the
// issued access and refresh tokens, optionally saving them to the settings
// file that onedrive-skill reads.
//
// Usage: onedrive-auth [--config path] [-v]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/onedrive-skill/internal/authhelper"
	"github.com/tonimelisma/onedrive-skill/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newAuthCmd().ExecuteContext(ctx)

	switch {
	case err == nil:
		return
	case errors.Is(err, authhelper.ErrCancelled):
		fmt.Fprintln(os.Stderr)
		color.New(color.FgRed).Fprintln(os.Stderr, "Authentication cancelled by user")
	default:
		color.New(color.FgRed).Fprintf(os.Stderr, "Authentication failed: %v\n", err)
	}

	stop()
	os.Exit(1)
}

func newAuthCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "onedrive-auth",
		Short:         "Obtain OneDrive access tokens with a browser sign-in",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			cfg, err := config.Resolve(config.ReadEnvOverrides(), config.CLIOverrides{ConfigPath: configPath}, logger)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return authhelper.RunInteractive(cmd.Context(), cfg, os.Stdin, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
