// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for onedrive-skill. Values are resolved
// once at startup through a layered override chain (defaults -> config file
// -> settings file -> environment -> explicit values) and the resulting
// Config is passed down to the Graph client, the skill, and the auth helper.
// Nothing below main reads the process environment on its own.
package config

// Config is the top-level configuration structure parsed from a TOML file.
// All keys are flat; there are no sections.
type Config struct {
	// BaseURL is the Graph API root that relative endpoint paths are
	// appended to.
	BaseURL string `toml:"base_url"`

	// ClientID is the Azure application (client) ID used by the auth helper.
	ClientID string `toml:"client_id"`

	// EnvFile is the KEY=VALUE settings file tokens are read from and
	// written to by the auth helper.
	EnvFile string `toml:"env_file"`

	LogLevel  string `toml:"log_level"`
	UserAgent string `toml:"user_agent"`

	// AccessToken and RefreshToken are never read from the config file.
	// They come from the settings file, the environment, or an explicit
	// value, in increasing priority.
	AccessToken  string `toml:"-"`
	RefreshToken string `toml:"-"`
}

// CLIOverrides holds values from CLI flags or explicit constructor arguments
// that override every other layer. Empty strings mean "not specified".
type CLIOverrides struct {
	ConfigPath  string
	AccessToken string
	LogLevel    string
}
