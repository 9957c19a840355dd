package config

import (
	"strconv"

	"github.com/nibzard/taskheap/internal/taskfile"
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
	// Files lists the config files that were applied, in load order.
	Files []string
}

// Default values.
const (
	DefaultTaskFile        = "tasks.csv"
	DefaultInitialCapacity = 10
	DefaultAutosave        = true
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Config holds the full configuration for taskheap.
type Config struct {
	// Paths
	TaskFile   string `toml:"task_file"`
	Format     string `toml:"format"` // csv, json, or empty for detection by extension
	SchemaFile string `toml:"schema_file"`

	// Scheduler
	InitialCapacity int `toml:"initial_capacity"`

	// Save the task file when an interactive session exits
	Autosave bool `toml:"autosave"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogFile       string `toml:"log_file"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// FileOptions returns the task file options described by the config.
// Format is validated when the config is loaded, so an unknown value here
// falls back to detection by extension.
func (c *Config) FileOptions() taskfile.Options {
	format, err := taskfile.ParseFormat(c.Format)
	if err != nil {
		format = taskfile.FormatAuto
	}
	return taskfile.Options{
		Format:     format,
		SchemaPath: c.SchemaFile,
	}
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"task_file",
		"format",
		"schema_file",
		"initial_capacity",
		"autosave",
		"log_level",
		"log_format",
		"log_file",
		"log_timestamps",
		"log_caller",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the string form of the named field, or empty string for an
// unknown field.
func (c *Config) Value(field string) string {
	switch field {
	case "task_file":
		return c.TaskFile
	case "format":
		return c.Format
	case "schema_file":
		return c.SchemaFile
	case "initial_capacity":
		return strconv.Itoa(c.InitialCapacity)
	case "autosave":
		return strconv.FormatBool(c.Autosave)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_file":
		return c.LogFile
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	}
	return ""
}
