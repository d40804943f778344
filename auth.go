package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/onedrive-skill/internal/authhelper"
	"github.com/tonimelisma/onedrive-skill/internal/skill"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with a browser and obtain access tokens",
		Long: `Run the interactive sign-in helper (same as onedrive-auth).

Opens a browser for Microsoft sign-in, prints the issued tokens and
optionally saves them to the settings file that onedrive-skill reads.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}
}

func newMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Print the skill description used by tool hosts",
		Args:  cobra.NoArgs,
		RunE:  runMetadata,
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	return authhelper.RunInteractive(cmd.Context(), resolvedCfg, os.Stdin, cmd.OutOrStdout(), buildLogger())
}

// whoamiOutput is the JSON schema for whoami --json.
type whoamiOutput struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	s, _, err := openSkill(cmd)
	if err != nil {
		return err
	}

	user, err := s.UserInfo(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), whoamiOutput{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			Email:       user.Email,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "User:  %s (%s)\n", user.DisplayName, user.Email)
	fmt.Fprintf(cmd.OutOrStdout(), "ID:    %s\n", user.ID)

	return nil
}

// runMetadata needs no token: the description is static.
func runMetadata(cmd *cobra.Command, _ []string) error {
	md := skill.New(nil).Metadata()

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), md)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:        %s\n", md.Name)
	fmt.Fprintf(out, "Version:     %s\n", md.Version)
	fmt.Fprintf(out, "Description: %s\n", md.Description)
	fmt.Fprintln(out, "Operations:")

	for _, op := range md.Operations {
		fmt.Fprintf(out, "  - %s\n", op)
	}

	return nil
}
