package authhelper

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/browser"

	"github.com/tonimelisma/onedrive-skill/internal/config"
)

// RunInteractive checks that stdin is a terminal and runs a full session
// that opens the system browser for sign-in.
func RunInteractive(ctx context.Context, cfg *config.Config, stdin *os.File, out io.Writer, logger *slog.Logger) error {
	if err := RequireTerminal(stdin); err != nil {
		return err
	}

	return NewSession(cfg, stdin, out, browser.OpenURL, logger).Run(ctx)
}
