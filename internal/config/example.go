package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# task-tracker configuration file
# Values can be overridden by TASKS_* environment variables or CLI flags.

# Task file (relative to the working directory, supports ~ expansion)
task_file = "tasks.json"

# Task file encoding: json, toml or yaml. Leave empty to pick it from the
# file extension (.json, .toml, .yaml/.yml).
# format = ""

# Logging: level is debug, info, warn or error; format is text, json or logfmt
log_level = "warn"
log_format = "text"
log_timestamps = false
log_caller = false

# Send logs to a file instead of stderr (required to see logs in the TUI)
# log_file = "~/.task-tracker/tasks.log"
`
}
