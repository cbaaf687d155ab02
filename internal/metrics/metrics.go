// Package metrics holds the Prometheus instruments for the engine. The set
// is injected into components rather than registered globally so tests can
// use a private registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Set struct {
	JobsScraped     *prometheus.CounterVec
	ScrapeErrors    *prometheus.CounterVec
	SearchesCreated prometheus.Counter
	MessagesSent    prometheus.Counter
	WebhookCalls    *prometheus.CounterVec
	ScrapeDuration  prometheus.Histogram
}

// New registers the engine's instruments on reg and returns the set.
func New(reg prometheus.Registerer) *Set {
	s := &Set{
		JobsScraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_jobs_scraped_total",
			Help: "Listings returned by each source, before dedupe.",
		}, []string{"source"}),
		ScrapeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_scrape_errors_total",
			Help: "Source runs that ended in an error or timeout.",
		}, []string{"source"}),
		SearchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_searches_created_total",
			Help: "New search profiles registered.",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_whatsapp_messages_sent_total",
			Help: "WhatsApp messages accepted by the Evolution API.",
		}),
		WebhookCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_webhook_calls_total",
			Help: "Webhook deliveries by outcome.",
		}, []string{"status"}),
		ScrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "engine_scrape_cycle_seconds",
			Help:    "Wall time of a full scrape cycle.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	reg.MustRegister(
		s.JobsScraped,
		s.ScrapeErrors,
		s.SearchesCreated,
		s.MessagesSent,
		s.WebhookCalls,
		s.ScrapeDuration,
	)
	return s
}
