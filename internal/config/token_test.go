package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAccessToken(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		env      string
		want     string
	}{
		{"explicit wins", "explicit", "env", "explicit"},
		{"env fallback", "", "env", "env"},
		{"explicit only", "explicit", "", "explicit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAccessToken(tt.explicit, EnvOverrides{AccessToken: tt.env})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAccessToken_Missing(t *testing.T) {
	_, err := ResolveAccessToken("", EnvOverrides{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSetting)

	var missing *MissingSettingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, EnvAccessToken, missing.Variable)
	assert.Contains(t, err.Error(), "ONEDRIVE_ACCESS_TOKEN")
}

func TestRequireAccessToken(t *testing.T) {
	cfg := DefaultConfig()

	_, err := cfg.RequireAccessToken()
	require.ErrorIs(t, err, ErrMissingSetting)

	cfg.AccessToken = "tok"

	tok, err := cfg.RequireAccessToken()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestMissingSettingError_NoHint(t *testing.T) {
	err := &MissingSettingError{Variable: EnvClientID}
	assert.Equal(t, "config: AZURE_CLIENT_ID is not set", err.Error())
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv(EnvAccessToken, "a")
	t.Setenv(EnvRefreshToken, "r")
	t.Setenv(EnvBaseURL, "https://example.com")
	t.Setenv(EnvClientID, "c")
	t.Setenv(EnvConfig, "/custom/config.toml")

	env := ReadEnvOverrides()
	assert.Equal(t, EnvOverrides{
		ConfigPath:   "/custom/config.toml",
		AccessToken:  "a",
		RefreshToken: "r",
		BaseURL:      "https://example.com",
		ClientID:     "c",
	}, env)
}

func TestEnvOverrides_MergeSettings(t *testing.T) {
	env := EnvOverrides{AccessToken: "process"}

	merged := env.mergeSettings(map[string]string{
		EnvAccessToken:  "file",
		EnvRefreshToken: "file-refresh",
	})

	assert.Equal(t, "process", merged.AccessToken)
	assert.Equal(t, "file-refresh", merged.RefreshToken)
	assert.Empty(t, merged.BaseURL)
}
