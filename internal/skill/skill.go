// Package skill wraps the OneDrive Graph client in a small set of operations
// that return human-readable text, suitable for exposing to an LLM tool
// integration. Destructive operations go through a confirmation hook.
package skill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tonimelisma/onedrive-skill/internal/config"
	"github.com/tonimelisma/onedrive-skill/internal/graph"
)

// ErrDeclined is returned when the confirmation hook rejects a destructive
// operation. No request is sent in that case.
var ErrDeclined = errors.New("skill: operation declined by user")

// Drive is the subset of the Graph client the skill consumes.
type Drive interface {
	ListChildren(ctx context.Context, folderPath string) ([]graph.Item, error)
	GetItem(ctx context.Context, itemID string) (*graph.Item, error)
	Download(ctx context.Context, itemID string) ([]byte, error)
	Upload(ctx context.Context, filePath string, content []byte) (*graph.Item, error)
	CreateFolder(ctx context.Context, name, parentPath string) (*graph.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
	Search(ctx context.Context, query string) ([]graph.Item, error)
	Me(ctx context.Context) (*graph.User, error)
}

// ConfirmFunc is asked before a destructive operation and returns true to
// proceed. The message starts with "OVERWRITE:" or "DELETE:".
type ConfirmFunc func(message string) bool

// Option configures a Skill.
type Option func(*Skill)

// WithConfirm installs a confirmation hook for uploads and deletes.
func WithConfirm(fn ConfirmFunc) Option {
	return func(s *Skill) {
		s.confirm = fn
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Skill) {
		s.logger = logger
	}
}

// Skill formats drive operations for human consumption.
type Skill struct {
	drive   Drive
	confirm ConfirmFunc
	logger  *slog.Logger
}

// New creates a Skill over drive. Without WithConfirm every operation is
// approved.
func New(drive Drive, opts ...Option) *Skill {
	s := &Skill{
		drive:   drive,
		confirm: func(string) bool { return true },
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.confirm == nil {
		s.confirm = func(string) bool { return true }
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Open builds a Skill backed by a Graph client for cfg. It fails with a
// *config.MissingSettingError before any network activity when cfg carries
// no access token.
func Open(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Skill, error) {
	token, err := cfg.RequireAccessToken()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	client := graph.NewClient(cfg.BaseURL, http.DefaultClient, graph.StaticToken(token), logger, cfg.UserAgent)

	return New(client, append([]Option{WithLogger(logger)}, opts...)...), nil
}

// ListFiles lists a folder (empty path for the root), one line per item.
func (s *Skill) ListFiles(ctx context.Context, folderPath string) (string, error) {
	items, err := s.drive.ListChildren(ctx, folderPath)
	if err != nil {
		return "", fmt.Errorf("listing %q: %w", folderPath, err)
	}

	return formatListing(items), nil
}

// Search finds items by free text and summarizes the first matches.
func (s *Skill) Search(ctx context.Context, query string) (string, error) {
	items, err := s.drive.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("searching for %q: %w", query, err)
	}

	return formatSearch(query, items), nil
}

// GetFileContent returns the raw bytes of a file.
func (s *Skill) GetFileContent(ctx context.Context, itemID string) ([]byte, error) {
	data, err := s.drive.Download(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", itemID, err)
	}

	return data, nil
}

// UploadContent writes content to filePath, replacing any existing file
// after confirmation.
func (s *Skill) UploadContent(ctx context.Context, filePath string, content []byte) (string, error) {
	msg := fmt.Sprintf("OVERWRITE: Upload %d bytes to '%s'? An existing file at this path will be replaced.",
		len(content), filePath)
	if !s.ask(msg) {
		return "", ErrDeclined
	}

	item, err := s.drive.Upload(ctx, filePath, content)
	if err != nil {
		return "", fmt.Errorf("uploading %q: %w", filePath, err)
	}

	return fmt.Sprintf("File uploaded successfully: %s (ID: %s)", item.Name, item.ID), nil
}

// CreateFolder creates name under parentPath (empty for the root).
func (s *Skill) CreateFolder(ctx context.Context, name, parentPath string) (string, error) {
	item, err := s.drive.CreateFolder(ctx, name, parentPath)
	if err != nil {
		return "", fmt.Errorf("creating folder %q: %w", name, err)
	}

	return fmt.Sprintf("Folder created successfully: %s (ID: %s)", item.Name, item.ID), nil
}

// DeleteItem deletes an item after confirmation. name is only used in the
// prompt and the result; it falls back to the ID when empty.
func (s *Skill) DeleteItem(ctx context.Context, itemID, name string) (string, error) {
	if name == "" {
		name = itemID
	}

	if !s.ask(fmt.Sprintf("DELETE: Permanently delete '%s' (ID: %s)? This action cannot be undone.", name, itemID)) {
		return "", ErrDeclined
	}

	if err := s.drive.DeleteItem(ctx, itemID); err != nil {
		return "", fmt.Errorf("deleting %s: %w", itemID, err)
	}

	return "Item deleted successfully: " + name, nil
}

// ItemInfo returns a single item's metadata.
func (s *Skill) ItemInfo(ctx context.Context, itemID string) (*graph.Item, error) {
	item, err := s.drive.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", itemID, err)
	}

	return item, nil
}

// UserInfo returns the signed-in user.
func (s *Skill) UserInfo(ctx context.Context) (*graph.User, error) {
	user, err := s.drive.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting user info: %w", err)
	}

	return user, nil
}

func (s *Skill) ask(message string) bool {
	ok := s.confirm(message)

	s.logger.Debug("confirmation",
		slog.String("message", message),
		slog.Bool("approved", ok),
	)

	return ok
}
