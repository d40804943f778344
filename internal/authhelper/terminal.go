package authhelper

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
)

// ErrNotTerminal is returned when stdin is not an interactive terminal.
// The helper has no headless mode.
var ErrNotTerminal = errors.New("authhelper: stdin is not an interactive terminal")

// RequireTerminal fails unless f is a terminal (including Cygwin/MSYS ptys).
func RequireTerminal(f *os.File) error {
	fd := f.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return nil
	}

	return ErrNotTerminal
}
