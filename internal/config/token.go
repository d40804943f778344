package config

import (
	"errors"
	"fmt"
)

// ErrMissingSetting is the sentinel for a required setting that no layer
// provided. Use errors.Is(err, config.ErrMissingSetting) to check.
var ErrMissingSetting = errors.New("config: missing required setting")

// MissingSettingError names the environment variable the user should set.
type MissingSettingError struct {
	Variable string
	Hint     string
}

func (e *MissingSettingError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("config: %s is not set: %s", e.Variable, e.Hint)
	}

	return fmt.Sprintf("config: %s is not set", e.Variable)
}

func (e *MissingSettingError) Unwrap() error {
	return ErrMissingSetting
}

// ResolveAccessToken returns explicit when non-empty, otherwise the access
// token captured from the environment (or settings file). It never touches
// the network.
func ResolveAccessToken(explicit string, env EnvOverrides) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if env.AccessToken != "" {
		return env.AccessToken, nil
	}

	return "", &MissingSettingError{
		Variable: EnvAccessToken,
		Hint:     "pass an access token explicitly or run onedrive-auth to obtain one",
	}
}

// RequireAccessToken reports the same configuration error as
// ResolveAccessToken for an already resolved Config.
func (c *Config) RequireAccessToken() (string, error) {
	return ResolveAccessToken(c.AccessToken, EnvOverrides{})
}
