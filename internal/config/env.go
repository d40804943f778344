package config

import "os"

// Environment variable names read at startup.
const (
	EnvAccessToken  = "ONEDRIVE_ACCESS_TOKEN"
	EnvRefreshToken = "ONEDRIVE_REFRESH_TOKEN"
	EnvBaseURL      = "ONEDRIVE_API_BASE_URL"
	EnvClientID     = "AZURE_CLIENT_ID"
	EnvConfig       = "ONEDRIVE_SKILL_CONFIG"
)

// EnvOverrides holds values captured from environment variables. It is read
// exactly once, in main, and threaded through from there.
type EnvOverrides struct {
	ConfigPath   string // ONEDRIVE_SKILL_CONFIG
	AccessToken  string // ONEDRIVE_ACCESS_TOKEN
	RefreshToken string // ONEDRIVE_REFRESH_TOKEN
	BaseURL      string // ONEDRIVE_API_BASE_URL
	ClientID     string // AZURE_CLIENT_ID
}

// ReadEnvOverrides reads the process environment and returns any overrides
// found. It does not modify a Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:   os.Getenv(EnvConfig),
		AccessToken:  os.Getenv(EnvAccessToken),
		RefreshToken: os.Getenv(EnvRefreshToken),
		BaseURL:      os.Getenv(EnvBaseURL),
		ClientID:     os.Getenv(EnvClientID),
	}
}

// mergeSettings fills empty EnvOverrides fields from a settings-file map.
// The process environment always wins over the settings file.
func (e EnvOverrides) mergeSettings(settings map[string]string) EnvOverrides {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = settings[key]
		}
	}

	fill(&e.AccessToken, EnvAccessToken)
	fill(&e.RefreshToken, EnvRefreshToken)
	fill(&e.BaseURL, EnvBaseURL)
	fill(&e.ClientID, EnvClientID)

	return e
}
