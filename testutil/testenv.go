// Package testutil provides shared helpers for the live E2E tests, which run
// the built binaries against a real OneDrive account.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonimelisma/onedrive-skill/internal/envfile"
)

// AllowlistEnv names the comma-separated list of accounts E2E tests may touch.
const AllowlistEnv = "ONEDRIVE_ALLOWED_TEST_ACCOUNTS"

// LoadSettings copies KEY=VALUE pairs from a settings file into the process
// environment. A missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence.
func LoadSettings(path string) error {
	settings, err := envfile.Load(path)
	if err != nil {
		return err
	}

	for k, v := range settings {
		if os.Getenv(k) == "" {
			if err := os.Setenv(k, v); err != nil {
				return fmt.Errorf("setting %s: %w", k, err)
			}
		}
	}

	return nil
}

// CheckAllowlist returns an error unless account appears in the allowlist.
// Matching is case-insensitive because mail addresses are.
func CheckAllowlist(account string) error {
	allowlist := os.Getenv(AllowlistEnv)
	if allowlist == "" {
		return fmt.Errorf("%s not set; example: %s=user@outlook.com", AllowlistEnv, AllowlistEnv)
	}

	for _, a := range strings.Split(allowlist, ",") {
		if strings.EqualFold(strings.TrimSpace(a), account) {
			return nil
		}
	}

	return fmt.Errorf("account %q is not in %s=%q", account, AllowlistEnv, allowlist)
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}
