// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.task-tracker/config.toml or OS-specific config directory)
// 3. Project config file (task-tracker.toml or .task-tracker.toml in the working directory)
// 4. Environment variables (TASKS_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.task-tracker/config.toml (preferred)
// - Windows: %APPDATA%\task-tracker\config.toml
// - macOS: ~/Library/Application Support/task-tracker/config.toml
// - Linux/BSD: $XDG_CONFIG_HOME/task-tracker/config.toml or ~/.config/task-tracker/config.toml
//
// Project-level config locations (overrides user config):
// - ./task-tracker.toml (preferred)
// - ./.task-tracker.toml
package config
