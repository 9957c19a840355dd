// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.taskheap/taskheap.toml or OS-specific config directory)
// 3. Project config file (taskheap.toml or .taskheap.toml in the project root)
// 4. Environment variables (TASKHEAP_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.taskheap/taskheap.toml (preferred)
// - Windows: %APPDATA%\taskheap\taskheap.toml
// - macOS: ~/Library/Application Support/taskheap/taskheap.toml
// - Linux/BSD: $XDG_CONFIG_HOME/taskheap/taskheap.toml or ~/.config/taskheap/taskheap.toml
//
// Project-level config locations (overrides user config):
// - ./taskheap.toml (preferred)
// - ./.taskheap.toml
package config
