package config

import (
	"os"
	"strconv"
)

// ApplyEnv overlays deployment endpoints onto a loaded config. Environment
// wins over the YAML file so one config file can serve every environment.
// API keys are not config: they come from the keychain (internal/secrets).
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("ENGINE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.App.Port = p
		}
	}
	if v := os.Getenv("EVOLUTION_API_URL"); v != "" {
		cfg.Notify.Evolution.BaseURL = v
	}
	if v := os.Getenv("EVOLUTION_INSTANCE"); v != "" {
		cfg.Notify.Evolution.Instance = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("SCRAPER_CRON"); v != "" {
		cfg.Scrape.Cron = v
	}
}
