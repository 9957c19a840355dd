package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskheap configuration file
# Values can be overridden by TASKHEAP_* environment variables or CLI flags

# Task file (relative to the working directory, supports ~ expansion)
task_file = "tasks.csv"

# Task file format: "csv", "json", or empty to detect by extension
# format = ""

# JSON Schema used to validate JSON task files (default: embedded schema)
# schema_file = "tasks.schema.json"

# Initial scheduler capacity; storage doubles when full
initial_capacity = 10

# Save the task file when the interactive menu exits
autosave = true

# Logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
# log_file = "~/.taskheap/taskheap.log"
log_timestamps = false
log_caller = false
`
}
