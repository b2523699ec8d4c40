package config

import "github.com/dmitrijs2005/gophnotes/internal/flagx"

// parseEnv overlays secrets that should not appear in process listings.
//
//	GOPHNOTES_DATABASE_DSN  DatabaseDSN
//	GOPHNOTES_SECRET_KEY    SecretKey
//	CRON_SECRET             CronSecret
//	OPENAI_API_KEY          OpenAIAPIKey
//	OPENAI_BASE_URL         OpenAIBaseURL
func parseEnv(cfg *Config) {
	flagx.EnvOverride(&cfg.DatabaseDSN, "GOPHNOTES_DATABASE_DSN")
	flagx.EnvOverride(&cfg.SecretKey, "GOPHNOTES_SECRET_KEY")
	flagx.EnvOverride(&cfg.CronSecret, "CRON_SECRET")
	flagx.EnvOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	flagx.EnvOverride(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
}
