package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
	"github.com/dmitrijs2005/gophnotes/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so they may be written as "2s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL        string         `json:"server_url"`
	DBPath           string         `json:"db_path"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	AutosaveDebounce timex.Duration `json:"autosave_debounce"`
	AutosaveInterval timex.Duration `json:"autosave_interval"`
	LogLevel         string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Keys absent from the file keep their current values.
// Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.AutosaveDebounce.Duration != 0 {
		cfg.AutosaveDebounce = jc.AutosaveDebounce.Duration
	}
	if jc.AutosaveInterval.Duration != 0 {
		cfg.AutosaveInterval = jc.AutosaveInterval.Duration
	}
}
