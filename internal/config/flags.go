package config

import "flag"

// flagToSource maps flag names to config field names.
var flagToSource = map[string]string{
	"file":           "task_file",
	"format":         "format",
	"schema":         "schema_file",
	"capacity":       "initial_capacity",
	"autosave":       "autosave",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-file":       "log_file",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines and parses CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	return parseFlagsWithSources(cfg, fs, args, nil)
}

// parseFlagsWithSources defines flags bound to cfg, parses args, and marks
// explicitly set flags in sources. If sources is nil, no tracking is done.
func parseFlagsWithSources(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskheap", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.TaskFile, "file", cfg.TaskFile, "Path to task file")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Task file format (csv|json, default by extension)")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "JSON Schema for JSON task files (default embedded)")

	// Scheduler
	fs.IntVar(&cfg.InitialCapacity, "capacity", cfg.InitialCapacity, "Initial scheduler capacity")
	fs.BoolVar(&cfg.Autosave, "autosave", cfg.Autosave, "Save the task file when the menu exits")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Append logs to this file instead of stderr")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagToSource[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
