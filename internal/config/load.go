package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tonimelisma/onedrive-skill/internal/envfile"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal and reported with "did you mean?"
// suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with defaults. No config file is required to get started.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> settings file -> environment -> CLI/explicit.
// The returned Config is validated and ready to hand to the Graph client.
func Resolve(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// 1. Config path: CLI > env > default.
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	// 2. Settings file fills whatever the environment left empty.
	settings, err := envfile.Load(cfg.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("loading settings file: %w", err)
	}

	logger.Debug("resolved config sources",
		slog.String("config_path", cfgPath),
		slog.String("env_file", cfg.EnvFile),
		slog.Int("settings_keys", len(settings)),
	)

	env = env.mergeSettings(settings)

	// 3. Environment.
	if env.BaseURL != "" {
		cfg.BaseURL = env.BaseURL
	}

	if env.ClientID != "" {
		cfg.ClientID = env.ClientID
	}

	cfg.AccessToken = env.AccessToken
	cfg.RefreshToken = env.RefreshToken

	// 4. CLI flags and explicit values.
	if cli.AccessToken != "" {
		cfg.AccessToken = cli.AccessToken
	}

	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}
