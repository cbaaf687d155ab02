package config

import (
	"fmt"
	"time"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills defaults and returns a normalized copy plus the
// list of problems a human should fix before trusting the engine.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	// ---- Defaults ----

	if out.App.Port == 0 {
		out.App.Port = 3004
	}
	if out.App.Timezone == "" {
		out.App.Timezone = "America/Sao_Paulo"
	}
	if out.Scrape.Cron == "" {
		out.Scrape.Cron = "0 0 * * *"
	}
	if out.Scrape.BatchSize <= 0 {
		out.Scrape.BatchSize = 5
	}
	if out.Scrape.SourceTimeout <= 0 {
		out.Scrape.SourceTimeout = 60
	}
	if out.Scrape.HostRatePerSec <= 0 {
		out.Scrape.HostRatePerSec = 1
	}
	if out.Scrape.HostBurst <= 0 {
		out.Scrape.HostBurst = 2
	}
	if out.Notify.Cron == "" {
		out.Notify.Cron = "0 */3 * * *"
	}
	if out.Notify.BatchSize <= 0 {
		out.Notify.BatchSize = 5
	}
	if out.Notify.DelaySeconds <= 0 {
		out.Notify.DelaySeconds = 2
	}
	if out.Notify.WindowStartHour == 0 && out.Notify.WindowEndHour == 0 {
		out.Notify.WindowStartHour = 9
		out.Notify.WindowEndHour = 20
	}
	if out.Notify.MaxPerCycle <= 0 {
		out.Notify.MaxPerCycle = 50
	}
	if out.Webhook.TimeoutSeconds <= 0 {
		out.Webhook.TimeoutSeconds = 5
	}
	if out.Retention.Cron == "" {
		out.Retention.Cron = "30 0 * * *"
	}
	if out.Retention.HorizonDays <= 0 {
		out.Retention.HorizonDays = 30
	}

	// ---- Validation rules ----

	if _, err := time.LoadLocation(out.App.Timezone); err != nil {
		res.addErr("app.timezone %q is not a valid IANA timezone", out.App.Timezone)
	}

	if out.Notify.WindowStartHour < 0 || out.Notify.WindowStartHour > 23 {
		res.addErr("notify.window_start_hour must be in [0,23], got %d", out.Notify.WindowStartHour)
	}
	if out.Notify.WindowEndHour < 1 || out.Notify.WindowEndHour > 24 {
		res.addErr("notify.window_end_hour must be in [1,24], got %d", out.Notify.WindowEndHour)
	}
	if out.Notify.WindowStartHour >= out.Notify.WindowEndHour {
		res.addErr("notify window is empty: start=%d end=%d", out.Notify.WindowStartHour, out.Notify.WindowEndHour)
	}

	if out.Notify.Evolution.BaseURL == "" {
		res.addWarn("notify.evolution.base_url is empty; WhatsApp delivery is disabled")
	}
	if out.Notify.Evolution.BaseURL != "" && out.Notify.Evolution.Instance == "" {
		res.addErr("notify.evolution.instance is required when base_url is set")
	}

	if out.Webhook.URL == "" {
		res.addWarn("webhook.url is empty; listings will not be forwarded downstream")
	}

	src := out.Scrape.Sources
	if !src.Gupy.Enabled && !src.InfoJobs.Enabled && !src.Vagas.Enabled &&
		!src.Indeed.Enabled && !src.LinkedInEmail.Enabled {
		res.addWarn("no sources enabled; scheduled runs will find nothing")
	}

	le := src.LinkedInEmail
	if le.Enabled {
		if le.IMAPHost == "" {
			res.addErr("scrape.sources.linkedin_email.imap_host is required when enabled")
		}
		if le.IMAPPort == 0 {
			res.addErr("scrape.sources.linkedin_email.imap_port is required when enabled")
		}
		if le.Username == "" {
			res.addErr("scrape.sources.linkedin_email.username is required when enabled")
		}
		if le.Mailbox == "" {
			res.addErr("scrape.sources.linkedin_email.mailbox is required when enabled")
		}
	}

	return out, res
}
