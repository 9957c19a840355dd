package config

import (
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	loadFromEnvWithSources(cfg, nil)
}

// loadFromEnvWithSources loads environment variables and updates source tracking.
// If sources is nil, no tracking is done.
func loadFromEnvWithSources(cfg *Config, sources map[string]ConfigSource) {
	mark := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TASKHEAP_FILE"); v != "" {
		cfg.TaskFile = v
		mark("task_file")
	}
	if v := os.Getenv("TASKHEAP_FORMAT"); v != "" {
		cfg.Format = v
		mark("format")
	}
	if v := os.Getenv("TASKHEAP_SCHEMA"); v != "" {
		cfg.SchemaFile = v
		mark("schema_file")
	}
	if v := os.Getenv("TASKHEAP_CAPACITY"); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.InitialCapacity = i
			mark("initial_capacity")
		}
	}
	if v := os.Getenv("TASKHEAP_AUTOSAVE"); v != "" {
		cfg.Autosave = boolFromString(v)
		mark("autosave")
	}

	// Logging configuration
	if v := os.Getenv("TASKHEAP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		mark("log_level")
	}
	if v := os.Getenv("TASKHEAP_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		mark("log_format")
	}
	if v := os.Getenv("TASKHEAP_LOG_FILE"); v != "" {
		cfg.LogFile = v
		mark("log_file")
	}
	if v := os.Getenv("TASKHEAP_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		mark("log_timestamps")
	}
	if v := os.Getenv("TASKHEAP_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		mark("log_caller")
	}
}
