// Package config loads runtime configuration for the GophNotes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "db_path": "gophnotes.db",
//	  "request_timeout": "10s",
//	  "autosave_debounce": "2s",
//	  "autosave_interval": "3s",
//	  "log_level": "warn"
//	}
package config
