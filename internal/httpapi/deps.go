package httpapi

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"empregozap-engine/internal/domain"
	"empregozap-engine/internal/metrics"
	"empregozap-engine/internal/search"
	"empregozap-engine/internal/store"
	"empregozap-engine/internal/worker"
)

type Deps struct {
	Store    *store.Store
	Searches *search.Manager
	Pool     *worker.Pool

	// Scrape entrypoints, injected for testability.
	RunSearch func(ctx context.Context, s domain.Search) error
	RunDue    func(ctx context.Context) error

	// Confirmation message after a new search registers. Optional.
	Confirm func(ctx context.Context, s domain.Search) error

	Metrics  *metrics.Set
	Gatherer prometheus.Gatherer

	Log *zap.SugaredLogger
}
