// Package scrape orchestrates one search run: fan out to every enabled
// source, normalize and dedupe what comes back, persist, and close the run.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"empregozap-engine/internal/config"
	"empregozap-engine/internal/domain"
	"empregozap-engine/internal/metrics"
	"empregozap-engine/internal/search"
	"empregozap-engine/internal/source"
	"empregozap-engine/internal/store"
)

// Forwarder pushes a run's results to an external consumer. Delivery is
// best-effort; a forwarding failure never fails the run.
type Forwarder interface {
	Forward(ctx context.Context, s domain.Search, listings []domain.Listing) error
}

type Runner struct {
	store   *store.Store
	mgr     *search.Manager
	sources []source.Source
	forward Forwarder
	met     *metrics.Set
	cfg     config.Scrape
	log     *zap.SugaredLogger
}

func NewRunner(st *store.Store, mgr *search.Manager, sources []source.Source, forward Forwarder, met *metrics.Set, cfg config.Scrape, log *zap.SugaredLogger) *Runner {
	return &Runner{
		store:   st,
		mgr:     mgr,
		sources: sources,
		forward: forward,
		met:     met,
		cfg:     cfg,
		log:     log,
	}
}

// RunDue processes every due search in bounded-concurrency batches. Per-search
// failures are logged and counted, never propagated: one broken search must
// not starve the rest of the cycle.
func (r *Runner) RunDue(ctx context.Context) error {
	started := time.Now()
	defer func() {
		if r.met != nil {
			r.met.ScrapeDuration.Observe(time.Since(started).Seconds())
		}
	}()

	due, err := r.store.DueSearches(ctx)
	if err != nil {
		return fmt.Errorf("load due searches: %w", err)
	}
	if len(due) == 0 {
		r.log.Debugw("scrape cycle: nothing due")
		return nil
	}
	r.log.Infow("scrape cycle start", "due", len(due))

	var g errgroup.Group
	g.SetLimit(r.cfg.BatchSize)
	for _, s := range due {
		s := s
		g.Go(func() error {
			if err := r.Run(ctx, s); err != nil {
				r.log.Warnw("search run failed", "search_id", s.ID, "user_id", s.UserID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	r.log.Infow("scrape cycle done", "due", len(due), "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}

type sourceResult struct {
	name string
	raws []source.RawListing
}

// Run executes one full search run. Whatever happens, the search never stays
// in scraping: the run closes to active on success and error otherwise, and
// last_run_at is always touched.
func (r *Runner) Run(ctx context.Context, s domain.Search) (err error) {
	if err := r.mgr.Transition(ctx, s.ID, domain.StatusScraping); err != nil {
		if errors.Is(err, search.ErrInvalidTransition) {
			r.log.Infow("search already scraping, skipping", "search_id", s.ID)
			return nil
		}
		return fmt.Errorf("enter scraping: %w", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("search run panic: %v", rec)
		}
		if terr := r.store.TouchLastRun(context.WithoutCancel(ctx), s.ID); terr != nil {
			r.log.Warnw("touch last_run_at failed", "search_id", s.ID, "error", terr)
		}
		if err != nil {
			if cerr := r.mgr.CloseRun(context.WithoutCancel(ctx), s.ID, domain.StatusError); cerr != nil {
				r.log.Errorw("close run failed", "search_id", s.ID, "error", cerr)
			}
		}
	}()

	listings, succeeded := r.fanOut(ctx, s)
	if succeeded == 0 && len(r.sources) > 0 {
		return errors.New("all sources failed")
	}

	var fresh []domain.Listing
	if len(listings) > 0 {
		fresh, err = r.store.UpsertListings(ctx, listings, s.UserID)
		if err != nil {
			return fmt.Errorf("upsert listings: %w", err)
		}
	}

	if err := r.mgr.CloseRun(ctx, s.ID, domain.StatusActive); err != nil {
		return fmt.Errorf("close run: %w", err)
	}
	r.log.Infow("search run done",
		"search_id", s.ID, "user_id", s.UserID,
		"scraped", len(listings), "new", len(fresh), "sources_ok", succeeded)

	// Only listings the user has not seen before go downstream; a cycle that
	// rediscovers a known batch stays silent.
	if r.forward != nil && len(fresh) > 0 {
		if ferr := r.forward.Forward(ctx, s, fresh); ferr != nil {
			r.log.Warnw("webhook forward failed", "search_id", s.ID, "error", ferr)
		}
	}
	return nil
}

// fanOut queries every source concurrently with a per-source timeout. A
// failing source is counted and skipped; siblings keep running.
func (r *Runner) fanOut(ctx context.Context, s domain.Search) ([]domain.Listing, int) {
	results := make(chan sourceResult, len(r.sources))
	timeout := time.Duration(r.cfg.SourceTimeout) * time.Second

	var g errgroup.Group
	for _, src := range r.sources {
		src := src
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			raws, err := src.Search(sctx, s.Role, s.City, s.State)
			if err != nil {
				if r.met != nil {
					r.met.ScrapeErrors.WithLabelValues(src.Name()).Inc()
				}
				r.log.Warnw("source failed", "source", src.Name(), "search_id", s.ID, "error", err)
				return nil
			}
			results <- sourceResult{name: src.Name(), raws: raws}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	seen := map[string]bool{}
	var listings []domain.Listing
	succeeded := 0
	for res := range results {
		succeeded++
		if r.met != nil {
			r.met.JobsScraped.WithLabelValues(res.name).Add(float64(len(res.raws)))
		}
		for _, raw := range res.raws {
			l := source.Normalize(raw, res.name)
			// Records without a url or role cannot be persisted; dropping
			// them here keeps one broken card from failing the whole batch.
			if l.URL == "" || l.Role == "" || seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			listings = append(listings, l)
		}
	}
	return listings, succeeded
}
