// Package authhelper runs the interactive sign-in session behind the
// onedrive-auth command: it walks the user through app registration, runs
// the browser login, shows the issued tokens, and optionally stores them in
// the settings file the skill reads at startup.
package authhelper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/tonimelisma/onedrive-skill/internal/config"
	"github.com/tonimelisma/onedrive-skill/internal/envfile"
	"github.com/tonimelisma/onedrive-skill/internal/graph"
)

// ErrCancelled is returned when the session is interrupted before the
// tokens were obtained and handled.
var ErrCancelled = errors.New("authhelper: authentication cancelled by user")

// clientIDPreviewLen is how much of a preconfigured client ID is echoed back.
const clientIDPreviewLen = 8

// LoginFunc performs the browser login. graph.LoginWithBrowser satisfies it.
type LoginFunc func(ctx context.Context, clientID string, openURL func(string) error, logger *slog.Logger) (*graph.LoginResult, error)

// Session is one interactive sign-in. The zero value is not usable; build
// it with NewSession.
type Session struct {
	in  *bufio.Reader
	out io.Writer

	// lines is fed by a single reader goroutine started on the first prompt.
	lines      chan lineResult
	readerOnce sync.Once

	clientID string
	envFile  string

	login       LoginFunc
	openBrowser func(string) error
	now         func() time.Time
	logger      *slog.Logger
}

// NewSession creates a session that reads answers from in and writes to
// out. cfg supplies the preconfigured client ID and the settings file path.
// openBrowser launches the system browser (browser.OpenURL in production).
func NewSession(cfg *config.Config, in io.Reader, out io.Writer, openBrowser func(string) error, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		in:          bufio.NewReader(in),
		out:         out,
		lines:       make(chan lineResult, 1),
		clientID:    cfg.ClientID,
		envFile:     cfg.EnvFile,
		login:       graph.LoginWithBrowser,
		openBrowser: openBrowser,
		now:         time.Now,
		logger:      logger,
	}
}

// Run executes the whole session. A canceled ctx yields an error wrapping
// ErrCancelled; everything else is returned with context.
func (s *Session) Run(ctx context.Context) error {
	s.printBanner()
	s.printInstructions()

	clientID, err := s.chooseClientID(ctx)
	if err != nil {
		return s.cancelled(ctx, err)
	}

	s.println()
	color.New(color.Bold).Fprintln(s.out, "Starting authentication...")
	s.println()

	res, err := s.login(ctx, clientID, s.openURL, s.logger)
	if err != nil {
		return s.cancelled(ctx, fmt.Errorf("authentication failed: %w", err))
	}

	s.printTokens(res)

	if err := s.offerSave(ctx, res); err != nil {
		return s.cancelled(ctx, err)
	}

	s.printClosing()

	return nil
}

// cancelled converts err into ErrCancelled when ctx was canceled.
func (s *Session) cancelled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	}

	return err
}

// chooseClientID offers the configured client ID and otherwise prompts.
func (s *Session) chooseClientID(ctx context.Context) (string, error) {
	if s.clientID != "" {
		preview := s.clientID
		if len(preview) > clientIDPreviewLen {
			preview = preview[:clientIDPreviewLen]
		}

		fmt.Fprintf(s.out, "Using Client ID from environment: %s...\n", preview)

		ok, err := s.confirm(ctx, "Use this Client ID? (y/n): ")
		if err != nil {
			return "", err
		}

		if ok {
			return s.clientID, nil
		}
	}

	s.println()

	id, err := s.ask(ctx, "Enter your Application (client) ID: ")
	if err != nil {
		return "", err
	}

	if id == "" {
		return "", &config.MissingSettingError{
			Variable: config.EnvClientID,
			Hint:     "a client ID is required",
		}
	}

	return id, nil
}

// openURL tells the user what is about to happen and launches the browser.
// When the browser cannot be started the URL is printed instead.
func (s *Session) openURL(authURL string) error {
	fmt.Fprintln(s.out, "A browser window will open for you to sign in.")
	fmt.Fprintln(s.out, "   Please sign in with your Microsoft account.")
	s.println()

	if err := s.openBrowser(authURL); err != nil {
		color.New(color.FgYellow).Fprintln(s.out, "Could not open a browser. Open this URL to sign in:")
		fmt.Fprintf(s.out, "  %s\n\n", authURL)

		return err
	}

	return nil
}

// offerSave asks whether to store the tokens and either upserts them into
// the settings file or prints export instructions.
func (s *Session) offerSave(ctx context.Context, res *graph.LoginResult) error {
	s.rule('-')
	s.println()

	ok, err := s.confirm(ctx, "Save tokens to .env file? (y/n): ")
	if err != nil {
		return err
	}

	if !ok {
		s.printExportInstructions(res.AccessToken)
		return nil
	}

	values := map[string]string{config.EnvAccessToken: res.AccessToken}
	if res.RefreshToken != "" {
		values[config.EnvRefreshToken] = res.RefreshToken
	}

	if err := envfile.Upsert(s.envFile, []string{config.EnvAccessToken, config.EnvRefreshToken}, values); err != nil {
		return fmt.Errorf("saving tokens: %w", err)
	}

	path := s.envFile
	if abs, absErr := filepath.Abs(path); absErr == nil {
		path = abs
	}

	s.logger.Info("saved tokens to settings file", slog.String("path", path))

	s.println()
	color.New(color.FgGreen).Fprintf(s.out, "Tokens saved to %s\n", path)
	s.println()
	fmt.Fprintln(s.out, "onedrive-skill reads this file at startup, so no further setup is needed:")
	fmt.Fprintln(s.out, "  onedrive-skill ls")

	return nil
}

// lineResult is one line read from the input.
type lineResult struct {
	line string
	err  error
}

// readLines forwards input lines to s.lines until the first read error,
// then closes the channel. A read blocked on a terminal cannot be
// interrupted, so the goroutine lives until input ends or the process exits;
// a line typed after a canceled prompt is delivered to the next one.
func (s *Session) readLines() {
	defer close(s.lines)

	for {
		line, err := s.in.ReadString('\n')
		s.lines <- lineResult{line: line, err: err}

		if err != nil {
			return
		}
	}
}

// ask prints prompt and returns the trimmed answer. EOF with no input is an
// empty answer. A canceled ctx returns ctx.Err() without consuming input.
func (s *Session) ask(ctx context.Context, prompt string) (string, error) {
	color.New(color.FgYellow).Fprint(s.out, prompt)

	if err := ctx.Err(); err != nil {
		s.println()
		return "", err
	}

	s.readerOnce.Do(func() { go s.readLines() })

	var res lineResult

	select {
	case r, ok := <-s.lines:
		if !ok {
			r = lineResult{err: io.EOF}
		}

		res = r
	case <-ctx.Done():
		s.println()
		return "", ctx.Err()
	}

	if res.err != nil && !errors.Is(res.err, io.EOF) {
		return "", fmt.Errorf("reading answer: %w", res.err)
	}

	if errors.Is(res.err, io.EOF) {
		// Keep the transcript readable when input ends mid-line.
		s.println()
	}

	return strings.TrimSpace(res.line), nil
}

// confirm asks a y/n question. Only "y" (any case) is a yes.
func (s *Session) confirm(ctx context.Context, prompt string) (bool, error) {
	answer, err := s.ask(ctx, prompt)
	if err != nil {
		return false, err
	}

	return strings.EqualFold(answer, "y"), nil
}
