package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/onedrive-skill/internal/config"
)

// Global flag reset pattern: newRootCmd() binds flags via StringVar/BoolVar,
// which reset the global flag variables to their zero values. Tests either
// set globals AFTER newRootCmd() returns, or pass flags through SetArgs.

// writeTestConfig writes a config file whose settings file lives in a fresh
// temp dir, so the developer's own .env never leaks into a test.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	envPath := filepath.Join(dir, ".env")

	content := "env_file = " + `"` + filepath.ToSlash(envPath) + `"` + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	return cfgPath
}

// runCLI executes the root command against a fake Graph server and returns
// stdout, stderr and the command error.
func runCLI(t *testing.T, srv *httptest.Server, stdin string, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv(config.EnvAccessToken, "test-token")
	t.Setenv(config.EnvBaseURL, srv.URL)
	t.Setenv(config.EnvConfig, "")

	oldCfg := resolvedCfg
	t.Cleanup(func() {
		resolvedCfg = oldCfg
		flagYes = false
		flagJSON = false
		flagQuiet = false
		flagVerbose = false
		flagConfigPath = ""
		logLevel.Set(slog.LevelWarn)
	})

	cmd := newRootCmd()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", writeTestConfig(t), "-q"}, args...))

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"ls", "search", "info", "get", "put", "mkdir", "rm", "whoami", "login", "metadata"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"config", "json", "verbose", "quiet", "yes"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag --%s", name)
	}
}

func TestBuildLogger_DefaultIsWarn(t *testing.T) {
	oldCfg := resolvedCfg
	t.Cleanup(func() { resolvedCfg = oldCfg })

	newRootCmd()

	resolvedCfg = config.DefaultConfig()

	logger := buildLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
}

func TestBuildLogger_ConfigLevel(t *testing.T) {
	oldCfg := resolvedCfg
	t.Cleanup(func() { resolvedCfg = oldCfg })

	newRootCmd()

	resolvedCfg = config.DefaultConfig()
	resolvedCfg.LogLevel = "info"

	logger := buildLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_VerboseWinsOverConfig(t *testing.T) {
	oldCfg := resolvedCfg
	t.Cleanup(func() {
		resolvedCfg = oldCfg
		flagVerbose = false
	})

	newRootCmd()

	resolvedCfg = config.DefaultConfig()
	resolvedCfg.LogLevel = "error"
	flagVerbose = true

	assert.True(t, buildLogger().Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_QuietWins(t *testing.T) {
	oldCfg := resolvedCfg
	t.Cleanup(func() {
		resolvedCfg = oldCfg
		flagVerbose = false
		flagQuiet = false
	})

	newRootCmd()

	resolvedCfg = config.DefaultConfig()
	flagVerbose = true
	flagQuiet = true

	logger := buildLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
}

func TestCLILogger_FollowsResolvedLevel(t *testing.T) {
	oldCfg := resolvedCfg
	t.Cleanup(func() {
		resolvedCfg = oldCfg
		flagVerbose = false
		logLevel.Set(slog.LevelWarn)
	})

	// Created before flags are parsed, like the signal watcher's logger.
	early := cliLogger()

	newRootCmd()

	resolvedCfg = config.DefaultConfig()
	flagVerbose = true

	buildLogger()

	assert.True(t, early.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestLoadConfig_BadConfigFile(t *testing.T) {
	oldCfg := resolvedCfg
	t.Cleanup(func() {
		resolvedCfg = oldCfg
		flagConfigPath = ""
	})

	newRootCmd()

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_levl = \"debug\"\n"), 0o600))

	flagConfigPath = cfgPath

	err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "log_level"`)
}

func TestRootCmd_MissingTokenFailsBeforeRequest(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv(config.EnvAccessToken, "")
	t.Setenv(config.EnvBaseURL, srv.URL)
	t.Setenv(config.EnvConfig, "")

	oldCfg := resolvedCfg
	t.Cleanup(func() { resolvedCfg = oldCfg })

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", writeTestConfig(t), "ls"})

	err := cmd.Execute()
	require.ErrorIs(t, err, config.ErrMissingSetting)
	assert.Contains(t, err.Error(), config.EnvAccessToken)
	assert.Zero(t, hits.Load())
}
