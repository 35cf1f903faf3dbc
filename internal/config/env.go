package config

import (
	"os"
	"strings"
)

// loadFromEnv overrides config from TASKS_* environment variables and
// records them in sources.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setString := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			sources[field] = SourceEnv
		}
	}
	setBool := func(env, field string, target *bool) {
		if v := os.Getenv(env); v != "" {
			*target = boolFromString(v)
			sources[field] = SourceEnv
		}
	}

	setString("TASKS_FILE", "task_file", &cfg.TaskFile)
	setString("TASKS_FORMAT", "format", &cfg.Format)
	setString("TASKS_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("TASKS_LOG_FORMAT", "log_format", &cfg.LogFormat)
	setBool("TASKS_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("TASKS_LOG_CALLER", "log_caller", &cfg.LogCaller)
	setString("TASKS_LOG_FILE", "log_file", &cfg.LogFile)
}

// boolFromString treats 1/true/yes/on (any case) as true.
func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
