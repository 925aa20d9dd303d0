package config

import "github.com/sambeau/quill/pkg/quill/settings"

// Profiles select the limit baseline that `limits` overrides.
const (
	ProfileSandbox   = "sandbox"   // settings.DefaultLimits()
	ProfileUnbounded = "unbounded" // settings.New()
)

// Config represents the complete Quill configuration
type Config struct {
	BaseDir string                `yaml:"-"`       // Directory containing config file, for resolving relative paths
	Profile string                `yaml:"profile"` // sandbox (default) or unbounded
	Limits  settings.LangSettings `yaml:"limits"`  // Overrides on top of the profile
	Locale  string                `yaml:"locale"`  // BCP 47 tag used to display values (default: "en")
	Logging LoggingConfig         `yaml:"logging"`
	Scripts []string              `yaml:"scripts"` // Default files for `quill check`, relative to the config file
	History string                `yaml:"history"` // REPL history file (default: in the temp directory)
}

// LoggingConfig holds CLI logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Profile: ProfileSandbox,
		Limits:  settings.DefaultLimits(),
		Locale:  "en",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Baseline returns the limits a profile starts from.
func Baseline(profile string) settings.LangSettings {
	if profile == ProfileUnbounded {
		return settings.New()
	}
	return settings.DefaultLimits()
}
