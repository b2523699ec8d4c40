package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the API server
//	-f string   local SQLite file
//	-t int      request timeout in seconds
//	-b int      autosave debounce in milliseconds
//	-i int      autosave interval in milliseconds
//	-l string   log level
//
// Flags it does not define are left to other components (see flagx.ParseKnown).
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API server")
	fs.StringVar(&cfg.DBPath, "f", cfg.DBPath, "local database file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	debounce := fs.Int("b", int(cfg.AutosaveDebounce.Milliseconds()), "autosave debounce (in milliseconds)")
	interval := fs.Int("i", int(cfg.AutosaveInterval.Milliseconds()), "autosave interval (in milliseconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := flagx.ParseKnown(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.AutosaveDebounce = time.Duration(*debounce) * time.Millisecond
	cfg.AutosaveInterval = time.Duration(*interval) * time.Millisecond
}
