package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/tonimelisma/onedrive-skill/internal/authhelper"
	"github.com/tonimelisma/onedrive-skill/internal/skill"
)

func main() {
	ctx := shutdownContext(context.Background(), cliLogger())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		switch {
		case errors.Is(err, skill.ErrDeclined):
			os.Exit(1)
		case errors.Is(err, authhelper.ErrCancelled):
			fmt.Fprintln(os.Stderr)
			color.New(color.FgRed).Fprintln(os.Stderr, "Authentication cancelled by user")
			os.Exit(1)
		}

		exitOnError(err)
	}
}
