package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"empregozap-engine/internal/config"
	"empregozap-engine/internal/domain"
	"empregozap-engine/internal/metrics"
	"empregozap-engine/internal/store"
)

// Dispatcher walks active searches and pushes their undelivered listings in
// throttled batches. Listings are only marked delivered after the channel
// accepted the message, so a failed send retries on the next cycle.
type Dispatcher struct {
	store  *store.Store
	sender Sender
	met    *metrics.Set
	cfg    config.Notify
	loc    *time.Location
	log    *zap.SugaredLogger

	// test seams
	now  func() time.Time
	pace func(ctx context.Context) error
}

func NewDispatcher(st *store.Store, sender Sender, met *metrics.Set, cfg config.Notify, loc *time.Location, log *zap.SugaredLogger) *Dispatcher {
	delay := time.Duration(cfg.DelaySeconds) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}
	// One token up front, then one message per delay interval. Shared across
	// users so the channel never sees a burst.
	lim := rate.NewLimiter(rate.Every(delay), 1)
	return &Dispatcher{
		store:  st,
		sender: sender,
		met:    met,
		cfg:    cfg,
		loc:    loc,
		log:    log,
		now:    time.Now,
		pace:   lim.Wait,
	}
}

// WithinWorkingHours reports whether messages may go out right now. The
// window is half-open: start hour inclusive, end hour exclusive.
func (d *Dispatcher) WithinWorkingHours() bool {
	h := d.now().In(d.loc).Hour()
	return h >= d.cfg.WindowStartHour && h < d.cfg.WindowEndHour
}

// DispatchAll runs one delivery cycle. Per-user failures are isolated; the
// cycle always visits every active search.
func (d *Dispatcher) DispatchAll(ctx context.Context) error {
	if !d.WithinWorkingHours() {
		d.log.Infow("outside working hours, skipping delivery",
			"start", d.cfg.WindowStartHour, "end", d.cfg.WindowEndHour)
		return nil
	}

	searches, err := d.store.ActiveSearches(ctx)
	if err != nil {
		return fmt.Errorf("load active searches: %w", err)
	}

	for _, s := range searches {
		if err := d.dispatchUser(ctx, s); err != nil {
			d.log.Warnw("delivery failed for user", "user_id", s.UserID, "search_id", s.ID, "error", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (d *Dispatcher) dispatchUser(ctx context.Context, s domain.Search) error {
	listings, err := d.store.PrioritizedUnsent(ctx, s.UserID, d.cfg.MaxPerCycle)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		return nil
	}
	d.log.Infow("delivering listings", "user_id", s.UserID, "count", len(listings))

	for _, batch := range chunk(listings, d.cfg.BatchSize) {
		if err := d.pace(ctx); err != nil {
			return err
		}

		if err := d.sender.SendText(ctx, s.Contact, RenderBatch(batch)); err != nil {
			// Unmarked listings ride again next cycle.
			return fmt.Errorf("send batch: %w", err)
		}
		if d.met != nil {
			d.met.MessagesSent.Inc()
		}

		ids := make([]int64, len(batch))
		for j, l := range batch {
			ids[j] = l.ID
		}
		if err := d.store.MarkDelivered(ctx, s.UserID, ids); err != nil {
			return fmt.Errorf("mark delivered: %w", err)
		}
	}
	return nil
}

// SendConfirmation tells the user their search is registered. Confirmation
// bypasses the working-hours gate: the user just talked to us.
func (d *Dispatcher) SendConfirmation(ctx context.Context, s domain.Search) error {
	if err := d.sender.SendText(ctx, s.Contact, RenderConfirmation(s)); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	if d.met != nil {
		d.met.MessagesSent.Inc()
	}
	return nil
}

func chunk(listings []domain.Listing, size int) [][]domain.Listing {
	if size <= 0 {
		size = 5
	}
	var out [][]domain.Listing
	for start := 0; start < len(listings); start += size {
		end := start + size
		if end > len(listings) {
			end = len(listings)
		}
		out = append(out, listings[start:end])
	}
	return out
}
