package config

import (
	"strconv"

	"github.com/nibzard/task-tracker/internal/logging"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
	// Warnings collects non-fatal problems such as unknown config keys.
	Warnings []string
}

// Default values.
const (
	DefaultTaskFile  = "tasks.json"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for the task tracker.
type Config struct {
	// Paths
	TaskFile string `toml:"task_file"`
	// Format forces the task file encoding (json, toml, yaml). Empty means
	// detect from the file extension.
	Format string `toml:"format"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogFile       string `toml:"log_file"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"task_file",
		"format",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_file",
	}
}

// LogOptions returns the logger options described by the config.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		Timestamps: c.LogTimestamps,
		Caller:     c.LogCaller,
		File:       c.LogFile,
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TaskFile = DefaultTaskFile
	cfg.Format = ""
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// Setting is one effective config value and where it came from.
type Setting struct {
	Key    string
	Value  string
	Source ConfigSource
}

// Settings returns every config key with its effective value, in file order.
func (cws *ConfigWithSources) Settings() []Setting {
	c := cws.Config
	values := map[string]string{
		"task_file":      c.TaskFile,
		"format":         c.Format,
		"log_level":      c.LogLevel,
		"log_format":     c.LogFormat,
		"log_timestamps": strconv.FormatBool(c.LogTimestamps),
		"log_caller":     strconv.FormatBool(c.LogCaller),
		"log_file":       c.LogFile,
	}
	settings := make([]Setting, 0, len(values))
	for _, key := range configFields() {
		settings = append(settings, Setting{Key: key, Value: values[key], Source: cws.Sources[key]})
	}
	return settings
}
