package config

import (
	"errors"
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks all configuration values and returns every error found,
// joined, so users can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateBaseURL(cfg.BaseURL); err != nil {
		errs = append(errs, err)
	}

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", cfg.LogLevel))
	}

	if cfg.EnvFile == "" {
		errs = append(errs, errors.New("env_file: must not be empty"))
	}

	if cfg.UserAgent == "" {
		errs = append(errs, errors.New("user_agent: must not be empty"))
	}

	return errors.Join(errs...)
}

// validateBaseURL requires an absolute http(s) URL. A trailing slash is
// rejected because endpoint paths already start with one.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url: scheme must be http or https, got %q", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("base_url: missing host in %q", raw)
	}

	if raw[len(raw)-1] == '/' {
		return fmt.Errorf("base_url: must not end with a slash, got %q", raw)
	}

	return nil
}
