package config

// Default values for configuration options. These are layer 0 of the
// override chain and work without any config file.
const (
	DefaultBaseURL   = "https://graph.microsoft.com/v1.0"
	DefaultEnvFile   = ".env"
	DefaultUserAgent = "onedrive-skill/0.1"

	defaultLogLevel = "warn"
)

// DefaultConfig returns a Config populated with all default values.
// It is the starting point for TOML decoding so unset keys keep defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		EnvFile:   DefaultEnvFile,
		LogLevel:  defaultLogLevel,
		UserAgent: DefaultUserAgent,
	}
}
