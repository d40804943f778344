package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/onedrive-skill/internal/config"
	"github.com/tonimelisma/onedrive-skill/internal/skill"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
	flagYes        bool
)

// logLevel is shared by every logger the CLI creates, including the signal
// watcher's, which exists before flags are parsed. buildLogger sets it.
var logLevel = func() *slog.LevelVar {
	v := new(slog.LevelVar)
	v.Set(slog.LevelWarn)

	return v
}()

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
// It is available to all subcommands after the root pre-run phase completes.
var resolvedCfg *config.Config

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "onedrive-skill",
		Short:   "OneDrive file operations over Microsoft Graph",
		Long:    "List, search, download, upload and manage OneDrive files with a bearer token from onedrive-auth.",
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	cmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "skip confirmation prompts")

	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newMkdirCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newMetadataCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// and stores the result in resolvedCfg for use by subcommands.
func loadConfig() error {
	env := config.ReadEnvOverrides()

	resolved, err := config.Resolve(env, config.CLIOverrides{ConfigPath: flagConfigPath}, cliLogger())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = resolved

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win.
func buildLogger() *slog.Logger {
	level := slog.LevelWarn

	if resolvedCfg != nil {
		switch resolvedCfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "error":
			level = slog.LevelError
		}
		// "warn" is the default level.
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	logLevel.Set(level)

	return cliLogger()
}

// cliLogger returns a stderr text logger at the current logLevel.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// openSkill builds the skill for a command. Destructive operations prompt on
// the command's stdin unless --yes is set.
func openSkill(cmd *cobra.Command) (*skill.Skill, *slog.Logger, error) {
	logger := buildLogger()

	s, err := skill.Open(resolvedCfg, logger, skill.WithConfirm(confirmFunc(cmd)))
	if err != nil {
		return nil, nil, err
	}

	return s, logger, nil
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
