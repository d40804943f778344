package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/onedrive-skill/internal/skill"
)

// confirmFunc returns the confirmation hook for destructive commands. With
// --yes every operation is approved; otherwise the user is asked on the
// command's stdin and anything but "y"/"yes" declines, including EOF.
func confirmFunc(cmd *cobra.Command) skill.ConfirmFunc {
	return func(message string) bool {
		if flagYes {
			return true
		}

		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", message)

		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return false
		}
	}
}
