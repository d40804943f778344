package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// missingEnvFile returns a config snippet pointing env_file at a path that
// does not exist, so tests never pick up a developer's real .env.
func missingEnvFile(t *testing.T) string {
	t.Helper()

	return "env_file = " + `"` + filepath.ToSlash(filepath.Join(t.TempDir(), "none.env")) + `"` + "\n"
}

func TestLoad_ValidFullConfig(t *testing.T) {
	path := writeTestConfig(t, `
base_url = "http://localhost:8080/v1.0"
client_id = "11111111-2222-3333-4444-555555555555"
env_file = "/tmp/tokens.env"
log_level = "debug"
user_agent = "custom/1.0"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/v1.0", cfg.BaseURL)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", cfg.ClientID)
	assert.Equal(t, "/tmp/tokens.env", cfg.EnvFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "custom/1.0", cfg.UserAgent)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := writeTestConfig(t, `log_level = "warn"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultEnvFile, cfg.EnvFile)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeTestConfig(t, `base_url = `)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_ValidationErrorsJoined(t *testing.T) {
	path := writeTestConfig(t, `
base_url = "ftp://example.com"
log_level = "chatty"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	path := writeTestConfig(t, missingEnvFile(t)+`
base_url = "https://file.example.com/v1.0"
client_id = "from-file"
`)

	env := EnvOverrides{
		BaseURL:     "https://env.example.com/v1.0",
		ClientID:    "from-env",
		AccessToken: "env-token",
	}

	cfg, err := Resolve(env, CLIOverrides{ConfigPath: path}, testLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/v1.0", cfg.BaseURL)
	assert.Equal(t, "from-env", cfg.ClientID)
	assert.Equal(t, "env-token", cfg.AccessToken)
}

func TestResolve_SettingsFileFillsGaps(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(
		"ONEDRIVE_ACCESS_TOKEN=file-token\nONEDRIVE_REFRESH_TOKEN=file-refresh\nAZURE_CLIENT_ID=file-client\n",
	), 0o600))

	path := writeTestConfig(t, "env_file = \""+filepath.ToSlash(envPath)+"\"\n")

	// Process environment wins for the client id; the rest comes from the file.
	cfg, err := Resolve(EnvOverrides{ClientID: "env-client"}, CLIOverrides{ConfigPath: path}, testLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.AccessToken)
	assert.Equal(t, "file-refresh", cfg.RefreshToken)
	assert.Equal(t, "env-client", cfg.ClientID)
}

func TestResolve_SettingsFileWithLongLine(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(
		"CERT="+strings.Repeat("A", 70000)+"\nONEDRIVE_REFRESH_TOKEN=file-refresh\n",
	), 0o600))

	path := writeTestConfig(t, "env_file = \""+filepath.ToSlash(envPath)+"\"\n")

	cfg, err := Resolve(EnvOverrides{AccessToken: "tok"}, CLIOverrides{ConfigPath: path}, testLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.AccessToken)
	assert.Equal(t, "file-refresh", cfg.RefreshToken)
}

func TestResolve_CLIWins(t *testing.T) {
	path := writeTestConfig(t, missingEnvFile(t))

	cfg, err := Resolve(
		EnvOverrides{AccessToken: "env-token"},
		CLIOverrides{ConfigPath: path, AccessToken: "explicit", LogLevel: "error"},
		testLogger(t),
	)
	require.NoError(t, err)

	assert.Equal(t, "explicit", cfg.AccessToken)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestResolve_EnvConfigPath(t *testing.T) {
	path := writeTestConfig(t, missingEnvFile(t)+`log_level = "warn"`)

	cfg, err := Resolve(EnvOverrides{ConfigPath: path}, CLIOverrides{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestResolve_InvalidEnvBaseURL(t *testing.T) {
	path := writeTestConfig(t, missingEnvFile(t))

	_, err := Resolve(EnvOverrides{BaseURL: "not a url"}, CLIOverrides{ConfigPath: path}, testLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestValidate_TrailingSlash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://graph.microsoft.com/v1.0/"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slash")
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}
