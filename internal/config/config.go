// Package config loads the engine's YAML configuration and applies
// environment overrides for deployment-specific endpoints.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SourceToggle struct {
	Enabled bool `yaml:"enabled"`
}

type LinkedInEmail struct {
	Enabled  bool   `yaml:"enabled"`
	IMAPHost string `yaml:"imap_host"`
	IMAPPort int    `yaml:"imap_port"`
	Username string `yaml:"username"`
	Mailbox  string `yaml:"mailbox"`
	// The password lives in the OS keychain, never here.
}

type Sources struct {
	Gupy          SourceToggle  `yaml:"gupy"`
	InfoJobs      SourceToggle  `yaml:"infojobs"`
	Vagas         SourceToggle  `yaml:"vagas"`
	Indeed        SourceToggle  `yaml:"indeed"`
	LinkedInEmail LinkedInEmail `yaml:"linkedin_email"`
}

type App struct {
	Port     int    `yaml:"port"`
	Timezone string `yaml:"timezone"` // e.g. America/Sao_Paulo
}

type Scrape struct {
	Cron           string  `yaml:"cron"`                   // e.g. "0 0 * * *"
	BatchSize      int     `yaml:"batch_size"`             // searches run concurrently per group
	SourceTimeout  int     `yaml:"source_timeout_seconds"` // per source call
	HostRatePerSec float64 `yaml:"host_rate_per_sec"`
	HostBurst      int     `yaml:"host_burst"`

	Sources Sources `yaml:"sources"`
}

type Evolution struct {
	BaseURL  string `yaml:"base_url"`
	Instance string `yaml:"instance"`
}

type Notify struct {
	Cron            string `yaml:"cron"`       // e.g. "0 */3 * * *"
	BatchSize       int    `yaml:"batch_size"` // listings per message
	DelaySeconds    int    `yaml:"delay_seconds"`
	WindowStartHour int    `yaml:"window_start_hour"`
	WindowEndHour   int    `yaml:"window_end_hour"`
	MaxPerCycle     int    `yaml:"max_per_cycle"` // prioritized listings pulled per user per cycle

	Evolution Evolution `yaml:"evolution"`
}

type Webhook struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type Retention struct {
	Cron        string `yaml:"cron"` // e.g. "30 0 * * *"
	HorizonDays int    `yaml:"horizon_days"`
}

type Config struct {
	App       App       `yaml:"app"`
	Scrape    Scrape    `yaml:"scrape"`
	Notify    Notify    `yaml:"notify"`
	Webhook   Webhook   `yaml:"webhook"`
	Retention Retention `yaml:"retention"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}
