package scrape

import (
	"go.uber.org/zap"

	"empregozap-engine/internal/config"
	"empregozap-engine/internal/secrets"
	"empregozap-engine/internal/source"
	"empregozap-engine/internal/source/gupy"
	"empregozap-engine/internal/source/indeed"
	"empregozap-engine/internal/source/infojobs"
	"empregozap-engine/internal/source/linkedinmail"
	"empregozap-engine/internal/source/vagas"
)

// BuildRegistry assembles the enabled sources from config. All HTTP sources
// share one host limiter so a burst of searches cannot hammer a portal.
func BuildRegistry(cfg config.Scrape, log *zap.SugaredLogger) []source.Source {
	limiter := source.NewHostLimiter(cfg.HostRatePerSec, cfg.HostBurst)

	var out []source.Source
	if cfg.Sources.Gupy.Enabled {
		out = append(out, gupy.New(limiter, log.Named("gupy")))
	}
	if cfg.Sources.InfoJobs.Enabled {
		out = append(out, infojobs.New(limiter, log.Named("infojobs")))
	}
	if cfg.Sources.Vagas.Enabled {
		out = append(out, vagas.New(limiter, log.Named("vagas")))
	}
	if cfg.Sources.Indeed.Enabled {
		out = append(out, indeed.New(limiter, log.Named("indeed")))
	}
	if le := cfg.Sources.LinkedInEmail; le.Enabled {
		password := func() (string, error) {
			return secrets.GetIMAPPassword(le.Username, le.IMAPHost)
		}
		out = append(out, linkedinmail.New(le.IMAPHost, le.IMAPPort, le.Username, le.Mailbox, password, log.Named("linkedin")))
	}
	return out
}
